// Package timeutil provides calendar-day arithmetic and human-readable
// relative time formatting. All day math is done in UTC so streak and
// activity calculations are stable across host timezones.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// FormatAbsoluteDate is the layout used once a timestamp is older than the
// relative-formatting window.
const FormatAbsoluteDate = "Jan 2, 2006"

// StartOfDay returns the start of the UTC calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsSameDay checks if two times fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := t1.UTC(), t2.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the signed number of calendar days from t1 to t2.
// Positive when t2 is after t1.
func DaysBetween(t1, t2 time.Time) int {
	return int(StartOfDay(t2).Sub(StartOfDay(t1)).Hours() / 24)
}

// FormatRelative buckets how long ago t was, relative to now:
// under a minute "just now", under an hour in minutes, under a day in
// hours, under a week in days, anything older as an absolute date.
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.UTC().Format(FormatAbsoluteDate)
	}
}
