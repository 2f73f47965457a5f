package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Clock
		wantErr bool
	}{
		{name: "should parse the short layout", value: "09:30", want: Clock{Hour: 9, Minute: 30}},
		{name: "should parse the long layout", value: "17:00:00", want: Clock{Hour: 17}},
		{name: "should reject an out of range hour", value: "25:00", wantErr: true},
		{name: "should reject garbage", value: "morning", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockAdd(t *testing.T) {
	assert.Equal(t, Clock{Hour: 10, Minute: 30}, Clock{Hour: 9, Minute: 30}.Add(time.Hour))

	// a slot starting near midnight must not wrap, so it still compares after
	// any same-day schedule end
	late := Clock{Hour: 23, Minute: 30}.Add(time.Hour)
	assert.Equal(t, Clock{Hour: 24, Minute: 30}, late)
	assert.True(t, late.After(Clock{Hour: 23, Minute: 59}))
}

func TestClockJSON(t *testing.T) {
	encoded, err := json.Marshal(Clock{Hour: 9, Minute: 5})
	require.NoError(t, err)
	assert.Equal(t, `"09:05"`, string(encoded))

	var decoded Clock
	require.NoError(t, json.Unmarshal([]byte(`"14:45"`), &decoded))
	assert.Equal(t, Clock{Hour: 14, Minute: 45}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"later"`), &decoded))
}

func TestClockScan(t *testing.T) {
	var clock Clock
	require.NoError(t, clock.Scan(time.Date(2026, 9, 1, 10, 15, 0, 0, time.UTC)))
	assert.Equal(t, Clock{Hour: 10, Minute: 15}, clock)

	require.NoError(t, clock.Scan([]byte("08:00:00")))
	assert.Equal(t, Clock{Hour: 8}, clock)

	assert.Error(t, clock.Scan(42))
}
