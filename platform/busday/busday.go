// Package busday provides business-day-aware date arithmetic.
// This is part of the platform layer and contains no business logic.
// All functions operate on date-only values: the time component of the
// input is discarded and results are midnight in the input's location.
package busday

import "time"

// DateOnly truncates a timestamp to its day boundary.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// AddCalendarDays adds n plain calendar days.
func AddCalendarDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// AddBusinessDays walks forward one calendar day at a time, skipping
// Saturday and Sunday, until n business days have been consumed.
func AddBusinessDays(t time.Time, n int) time.Time {
	d := DateOnly(t)
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if isBusinessDay(d) {
			remaining--
		}
	}
	return d
}

// NextWeekday returns the next occurrence of the given weekday strictly
// after t, at the given hour (used for the "next Monday 09:00" snooze preset).
func NextWeekday(t time.Time, weekday time.Weekday, hour int) time.Time {
	d := DateOnly(t).AddDate(0, 0, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
