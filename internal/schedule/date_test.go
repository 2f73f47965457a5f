package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2026, Month: time.September, Day: 1}, got)

	_, err = ParseDate("01/09/2026")
	assert.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	earlier := Date{Year: 2026, Month: time.September, Day: 1}
	later := Date{Year: 2026, Month: time.September, Day: 2}

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
	assert.True(t, earlier.Equal(earlier))
	assert.True(t, Date{Year: 2025, Month: time.December, Day: 31}.Before(earlier))
}

func TestDateWeekday(t *testing.T) {
	assert.Equal(t, time.Tuesday, Date{Year: 2026, Month: time.September, Day: 1}.Weekday())
	assert.Equal(t, time.Sunday, Date{Year: 2026, Month: time.September, Day: 6}.Weekday())
}

func TestDateJSON(t *testing.T) {
	encoded, err := json.Marshal(Date{Year: 2026, Month: time.September, Day: 1})
	require.NoError(t, err)
	assert.Equal(t, `"2026-09-01"`, string(encoded))

	var decoded Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-12-24"`), &decoded))
	assert.Equal(t, Date{Year: 2026, Month: time.December, Day: 24}, decoded)
}

func TestDateScan(t *testing.T) {
	var date Date
	require.NoError(t, date.Scan(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date{Year: 2026, Month: time.September, Day: 1}, date)

	require.NoError(t, date.Scan([]byte("2026-10-05")))
	assert.Equal(t, Date{Year: 2026, Month: time.October, Day: 5}, date)

	assert.Error(t, date.Scan(3.14))
}
