package schedule

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrRangeNotFound is returned when cancelling a range that does not exist.
	ErrRangeNotFound = errors.New("unavailable range not found")

	// ErrRangeCancelled is returned when cancelling a range that was already cancelled.
	ErrRangeCancelled = errors.New("unavailable range already cancelled")

	// ErrRangePast is returned when cancelling a range that already ended.
	ErrRangePast = errors.New("unavailable range already ended")
)

// UnavailableRange is a date interval during which a doctor is not bookable.
// Ranges are never physically removed, cancellation only flips the deleted flag.
type UnavailableRange struct {
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
	Deleted   bool   `json:"isDeleted"`
}

// Validate checks the range before it is added to the doctor record.
func (r UnavailableRange) Validate() error {
	if r.StartDate.IsZero() {
		return errors.New("startDate required")
	}
	if r.EndDate.IsZero() {
		return errors.New("endDate required")
	}
	if r.EndDate.Before(r.StartDate) {
		return errors.New("endDate precedes startDate")
	}
	return nil
}

// Unavailability maps an opaque key to an unavailable range.
type Unavailability map[string]UnavailableRange

// ParseUnavailability decodes a stored unavailable-ranges document. Entries
// that cannot be decoded or miss their dates are skipped, their keys are
// returned so the caller can log them.
func ParseUnavailability(doc string) (Unavailability, []string, error) {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, nil, fmt.Errorf("malformed unavailable ranges document: %w", err)
	}
	ranges := make(Unavailability, len(raw))
	var skipped []string
	for key, entry := range raw {
		var parsed UnavailableRange
		if err := json.Unmarshal(entry, &parsed); err != nil || parsed.StartDate.IsZero() || parsed.EndDate.IsZero() {
			skipped = append(skipped, key)
			continue
		}
		ranges[key] = parsed
	}
	return ranges, skipped, nil
}

// Encode serializes the ranges into their stored document form.
func (u Unavailability) Encode() (string, error) {
	doc, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

// Covers reports whether the given date falls inside any active range,
// inclusive on both ends. Cancelled ranges do not block bookings.
func (u Unavailability) Covers(date Date) bool {
	for _, r := range u {
		if r.Deleted {
			continue
		}
		if !date.Before(r.StartDate) && !date.After(r.EndDate) {
			return true
		}
	}
	return false
}

// Add registers a new range under a generated key and returns the key.
func (u Unavailability) Add(r UnavailableRange) string {
	key := uuid.NewString()
	u[key] = r
	return key
}

// Cancel soft-deletes the range with the given key. A range that was already
// cancelled or that ended before today cannot be cancelled.
func (u Unavailability) Cancel(key string, today Date) error {
	r, found := u[key]
	if !found {
		return ErrRangeNotFound
	}
	if r.Deleted {
		return ErrRangeCancelled
	}
	if r.EndDate.Before(today) {
		return ErrRangePast
	}
	r.Deleted = true
	u[key] = r
	return nil
}
