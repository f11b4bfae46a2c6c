package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoulTime(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func TestMarketClock_CanExecuteOrder(t *testing.T) {
	clock, err := NewMarketClock("", []string{"2026-01-01"})
	require.NoError(t, err)

	cases := []struct {
		name string
		at   string
		open bool
	}{
		{"mid session weekday", "2026-03-04 11:00", true},
		{"session open boundary", "2026-03-04 09:00", true},
		{"session close boundary", "2026-03-04 15:30", true},
		{"before open", "2026-03-04 08:59", false},
		{"after close", "2026-03-04 15:31", false},
		{"saturday", "2026-03-07 11:00", false},
		{"sunday", "2026-03-08 11:00", false},
		{"configured holiday", "2026-01-01 11:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := clock.CanExecuteOrder(seoulTime(t, tc.at))
			assert.Equal(t, tc.open, ok)
			if !tc.open {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestMarketClock_ConvertsForeignTimezones(t *testing.T) {
	clock, err := NewMarketClock("Asia/Seoul", nil)
	require.NoError(t, err)

	// 01:00 UTC on a weekday is 10:00 in Seoul.
	utc := time.Date(2026, 3, 4, 1, 0, 0, 0, time.UTC)
	ok, _ := clock.CanExecuteOrder(utc)
	assert.True(t, ok)
}

func TestNewMarketClock_RejectsBadHoliday(t *testing.T) {
	_, err := NewMarketClock("", []string{"01/01/2026"})
	assert.Error(t, err)
}
