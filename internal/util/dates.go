package util

import "time"

// DateOnly returns the calendar day of t as midnight UTC, the form every
// ledger date is kept in.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	day := DateOnly(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// GetMonthDates returns the first and last day of the month. A year of 0
// means the year of now.
func GetMonthDates(month int, year int, now time.Time) (time.Time, time.Time) {
	y := year
	if y <= 0 {
		y = now.Year()
	}

	firstOfMonth := time.Date(y, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	return firstOfMonth, lastOfMonth
}

// InRange reports whether day falls between from and to, both inclusive.
// A zero bound leaves that side open.
func InRange(day, from, to time.Time) bool {
	if !from.IsZero() && day.Before(from) {
		return false
	}
	if !to.IsZero() && day.After(to) {
		return false
	}
	return true
}
