package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clinic-booking/internal/apierrors"
)

// Hours holds the raw working interval of a single weekday as stored in the
// doctor record. An empty start or end means the doctor does not work that day.
type Hours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Weekly maps a lowercase weekday name (e.g. "monday") to its working hours.
type Weekly map[string]Hours

// Interval is a decoded working interval of a single weekday.
type Interval struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// DayKey returns the lowercase weekday name used as key in the stored document.
func DayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekly decodes a stored working-hours document. A malformed document is
// a hard failure, since a booking cannot be validated against it.
func ParseWeekly(doc string) (Weekly, error) {
	weekly := make(Weekly)
	if err := json.Unmarshal([]byte(doc), &weekly); err != nil {
		return nil, fmt.Errorf("malformed working hours document: %w", err)
	}
	return weekly, nil
}

// Encode serializes the weekly schedule into its stored document form.
func (w Weekly) Encode() (string, error) {
	doc, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

// WorkingHours returns the working interval for the given date, or nil when
// the doctor does not work that weekday. Hours present but unparseable fail
// with an error, they cannot be silently treated as a day off.
func (w Weekly) WorkingHours(date Date) (*Interval, error) {
	hours, found := w[DayKey(date.Weekday())]
	if !found || hours.Start == "" || hours.End == "" {
		return nil, nil
	}
	start, err := ParseClock(hours.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(hours.End)
	if err != nil {
		return nil, err
	}
	return &Interval{Start: start, End: end}, nil
}

// Validate checks the weekly schedule before it is written to the doctor
// record, so read paths only ever deal with well-formed documents.
func (w Weekly) Validate() error {
	for day, hours := range w {
		if !isWeekdayKey(day) {
			return apierrors.NewValidationError(day, "unknown weekday")
		}
		if hours.Start == "" && hours.End == "" {
			continue
		}
		if hours.Start == "" || hours.End == "" {
			return apierrors.NewValidationError(day, "both start and end are required")
		}
		start, err := ParseClock(hours.Start)
		if err != nil {
			return apierrors.NewValidationError(day, "invalid start")
		}
		end, err := ParseClock(hours.End)
		if err != nil {
			return apierrors.NewValidationError(day, "invalid end")
		}
		if !start.Before(end) {
			return apierrors.NewValidationError(day, "end must be after start")
		}
	}
	return nil
}

func isWeekdayKey(key string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if DayKey(d) == key {
			return true
		}
	}
	return false
}
