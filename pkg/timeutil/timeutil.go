// Package timeutil provides calendar utilities for the weekly progress window.
// All aggregation dates in BrainQuest are absolute UTC calendar dates: a fixed
// policy so that two sessions of the same owner in different timezones fold
// into the same day bucket.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// Common date formats.
const (
	// FormatDate is the ISO date format (YYYY-MM-DD) used as the day-bucket key.
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format for logs.
	FormatDateTime = "2006-01-02 15:04:05"
)

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the start of the day (00:00:00) in UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday 00:00:00 UTC of the week containing t.
// The weekly window is always Monday-aligned.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	weekday := int(u.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(u.AddDate(0, 0, -(weekday - 1)))
}

// EndOfWeek returns the Sunday 00:00:00 UTC of the week containing t.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// DateKey formats a time as the ISO date key (YYYY-MM-DD) in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDateKey parses an ISO date key into a UTC midnight time.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, key, time.UTC)
}

// IsSameDay checks if two times fall on the same UTC calendar date.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}

// IsSameWeek checks if two times fall in the same Monday-aligned week.
func IsSameWeek(t1, t2 time.Time) bool {
	return StartOfWeek(t1).Equal(StartOfWeek(t2))
}

// DaysBetween calculates the number of whole days between two times.
// The result is always non-negative.
func DaysBetween(t1, t2 time.Time) int {
	d1 := StartOfDay(t1)
	d2 := StartOfDay(t2)
	days := int(d2.Sub(d1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// WeekDates returns the seven UTC dates of the Monday-aligned week
// containing t, in Monday..Sunday order.
func WeekDates(t time.Time) [7]time.Time {
	var dates [7]time.Time
	start := StartOfWeek(t)
	for i := 0; i < 7; i++ {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}
