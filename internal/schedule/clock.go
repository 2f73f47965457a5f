// Package schedule contains the structures that represent a doctor's availability:
// the weekly working hours and the unavailable date ranges, both persisted as
// JSON documents inside the doctor record.
package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Clock represents a wall-clock time of day, without a date or location attached.
type Clock struct {
	Hour   int
	Minute int
}

// ClockOf extracts the time of day from the given instant.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseClock parses a clock in "15:04" or "15:04:05" layout.
func ParseClock(value string) (Clock, error) {
	var zeroClock Clock
	parsed, err := time.Parse("15:04:05", value)
	if err != nil {
		parsed, err = time.Parse("15:04", value)
	}
	if err != nil {
		return zeroClock, fmt.Errorf("invalid clock %q: %w", value, err)
	}
	return ClockOf(parsed), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the clock as minutes elapsed since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

// After reports whether c is later in the day than other.
func (c Clock) After(other Clock) bool {
	return c.Minutes() > other.Minutes()
}

// Add returns the clock moved forward by the given duration. The result is not
// wrapped at midnight, so a slot crossing the end of the day stays after any
// same-day schedule end.
func (c Clock) Add(d time.Duration) Clock {
	total := c.Minutes() + int(d.Minutes())
	return Clock{Hour: total / 60, Minute: total % 60}
}

// IsZero reports whether the clock is midnight, the zero value.
func (c Clock) IsZero() bool {
	return c.Hour == 0 && c.Minute == 0
}

// MarshalJSON marshals the clock in "15:04" layout.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON unmarshals a clock from its "15:04" or "15:04:05" layout.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseClock(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner, accepting TIME column values.
func (c *Clock) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*c = ClockOf(v)
		return nil
	case []byte:
		parsed, err := ParseClock(string(v))
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case string:
		parsed, err := ParseClock(v)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	return fmt.Errorf("unsupported clock column type %T", src)
}

// Value implements driver.Valuer, emitting a TIME literal.
func (c Clock) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute), nil
}
