package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	at := time.Date(2026, 3, 1, 17, 42, 13, 500, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDay(at))
}

func TestStartOfDay_NormalizesTimezone(t *testing.T) {
	// 01:00 UTC+6 is still the previous UTC day.
	loc := time.FixedZone("UTC+6", 6*3600)
	at := time.Date(2026, 3, 2, 1, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), StartOfDay(at))
}

func TestIsSameDay(t *testing.T) {
	a := time.Date(2026, 3, 1, 0, 1, 0, 0, time.UTC)
	b := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	c := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	assert.True(t, IsSameDay(a, b))
	assert.False(t, IsSameDay(b, c))
}

func TestDaysBetween_Signed(t *testing.T) {
	a := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 4, DaysBetween(a, a.AddDate(0, 0, 4)))
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", FormatRelative(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", FormatRelative(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", FormatRelative(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", FormatRelative(now.Add(-49*time.Hour), now))
	assert.Equal(t, "Mar 1, 2026", FormatRelative(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), now))
}

func TestFormatRelative_FutureTimestampsClampToNow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", FormatRelative(now.Add(5*time.Minute), now))
}
