package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, utc time.Time) *Clock {
	t.Helper()
	return NewFixedAt(-3, func() time.Time { return utc })
}

func TestNow_ProjectsIntoFixedZone(t *testing.T) {
	// 13:05 UTC is 10:05 in UTC-3.
	c := fixedClock(t, time.Date(2024, 3, 15, 13, 5, 0, 0, time.UTC))
	now := c.Now()
	assert.Equal(t, "2024-03-15", now.DateISO)
	assert.Equal(t, 10, now.Hour)
	assert.Equal(t, 5, now.Minute)
}

func TestNow_OffsetCrossesDateBoundary(t *testing.T) {
	// 01:00 UTC is still the previous civil day in UTC-3.
	c := fixedClock(t, time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC))
	now := c.Now()
	assert.Equal(t, "2024-03-14", now.DateISO)
	assert.Equal(t, 22, now.Hour)
}

func TestDayBounds_HalfOpenInterval(t *testing.T) {
	c := NewFixed(-3)
	start, end, err := c.DayBounds("2024-03-15")
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, end.Sub(start))
	// Local midnight of UTC-3 is 03:00 UTC.
	assert.True(t, start.Equal(time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2024, 3, 16, 3, 0, 0, 0, time.UTC)))
}

func TestDayBounds_InvalidDate(t *testing.T) {
	c := NewFixed(-3)
	_, _, err := c.DayBounds("15.03.2024")
	assert.Error(t, err)
}

func TestMidnight_MatchesDayStart(t *testing.T) {
	c := NewFixed(-3)
	m, err := c.Midnight("2024-12-31")
	require.NoError(t, err)
	start, _, err := c.DayBounds("2024-12-31")
	require.NoError(t, err)
	assert.True(t, m.Equal(start))
}

func TestDateOf_RoundTripsMidnight(t *testing.T) {
	c := NewFixed(-3)
	for _, date := range []string{"2024-01-01", "2024-02-29", "2024-12-31"} {
		m, err := c.Midnight(date)
		require.NoError(t, err)
		assert.Equal(t, date, c.DateOf(m))
		// Same instant viewed from UTC must not drift a day.
		assert.Equal(t, date, c.DateOf(m.UTC()))
	}
}
