package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func TestParseUnavailability(t *testing.T) {
	doc := `{
		"a": {"startDate": "2026-09-10", "endDate": "2026-09-12", "reason": "conference"},
		"b": {"startDate": "not-a-date", "endDate": "2026-09-12"},
		"c": 42
	}`
	ranges, skipped, err := ParseUnavailability(doc)
	require.NoError(t, err)
	assert.Len(t, ranges, 1)
	assert.ElementsMatch(t, []string{"b", "c"}, skipped)
	assert.Equal(t, date(2026, time.September, 10), ranges["a"].StartDate)

	_, _, err = ParseUnavailability(`not json`)
	assert.Error(t, err)
}

func TestUnavailabilityCovers(t *testing.T) {
	ranges := Unavailability{
		"active":    {StartDate: date(2026, time.September, 10), EndDate: date(2026, time.September, 12)},
		"cancelled": {StartDate: date(2026, time.September, 20), EndDate: date(2026, time.September, 22), Deleted: true},
	}

	// inclusive on both ends
	assert.True(t, ranges.Covers(date(2026, time.September, 10)))
	assert.True(t, ranges.Covers(date(2026, time.September, 11)))
	assert.True(t, ranges.Covers(date(2026, time.September, 12)))
	assert.False(t, ranges.Covers(date(2026, time.September, 13)))

	// a cancelled range does not block
	assert.False(t, ranges.Covers(date(2026, time.September, 21)))
}

func TestUnavailabilityAddAndCancel(t *testing.T) {
	today := date(2026, time.September, 1)
	ranges := make(Unavailability)
	key := ranges.Add(UnavailableRange{StartDate: date(2026, time.September, 10), EndDate: date(2026, time.September, 12)})
	require.NotEmpty(t, key)

	require.NoError(t, ranges.Cancel(key, today))
	assert.True(t, ranges[key].Deleted)

	assert.ErrorIs(t, ranges.Cancel(key, today), ErrRangeCancelled)
	assert.ErrorIs(t, ranges.Cancel("missing", today), ErrRangeNotFound)

	pastKey := ranges.Add(UnavailableRange{StartDate: date(2026, time.August, 1), EndDate: date(2026, time.August, 3)})
	assert.ErrorIs(t, ranges.Cancel(pastKey, today), ErrRangePast)
}

func TestUnavailableRangeValidate(t *testing.T) {
	valid := UnavailableRange{StartDate: date(2026, time.September, 10), EndDate: date(2026, time.September, 12)}
	assert.NoError(t, valid.Validate())

	inverted := UnavailableRange{StartDate: date(2026, time.September, 12), EndDate: date(2026, time.September, 10)}
	assert.Error(t, inverted.Validate())

	assert.Error(t, UnavailableRange{EndDate: date(2026, time.September, 12)}.Validate())
}
