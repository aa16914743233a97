// Package recurrence computes the next occurrence of a reminder from a
// free-form recurrence rule.
//
// Supported rules, after lowercasing and trimming:
//
//	daily | day        +1 day
//	weekly | week      +1 week
//	monthly | month    +1 month
//	yearly | year      +1 year
//	"<N> <unit>"       +N units; unit prefix-matches minute, hour, day,
//	                   week, month, year ("3 days", "3 day", "30 minutes")
//
// Any other shape is an invalid rule, which callers treat as non-recurring,
// never as an error.
//
// Month and year additions clamp to the end of the shorter target month
// instead of overflowing into the next one: 2024-01-31 + monthly is
// 2024-02-29, and 2024-02-29 + yearly is 2025-02-28.
package recurrence

import (
	"strconv"
	"strings"
	"time"
)

// A unit names a supported interval and its canonical rule token.
type unit struct {
	name string
	add  func(t time.Time, n int) time.Time
}

var units = []unit{
	{"minute", func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Minute) }},
	{"hour", func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Hour) }},
	{"day", func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }},
	{"week", func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }},
	{"month", func(t time.Time, n int) time.Time { return addMonthsClamped(t, n) }},
	{"year", func(t time.Time, n int) time.Time { return addMonthsClamped(t, 12*n) }},
}

// Next computes the occurrence after current according to rule.
//
// Returns (zero, false) for an invalid rule, or when the computed next
// occurrence equals current exactly, which guards against same-instant loops
// on degenerate rules like "0 minutes".
func Next(current time.Time, rule string) (time.Time, bool) {
	rule = strings.ToLower(strings.TrimSpace(rule))

	count := 1

	var name string

	switch rule {
	case "daily", "day":
		name = "day"
	case "weekly", "week":
		name = "week"
	case "monthly", "month":
		name = "month"
	case "yearly", "year":
		name = "year"
	default:
		tokens := strings.Fields(rule)
		if len(tokens) != 2 {
			return time.Time{}, false
		}

		n, err := strconv.Atoi(tokens[0])
		if err != nil {
			return time.Time{}, false
		}

		count = n
		name = tokens[1]
	}

	for _, u := range units {
		if !strings.HasPrefix(name, u.name) {
			continue
		}

		next := u.add(current, count)
		if next.Equal(current) {
			return time.Time{}, false
		}

		return next, true
	}

	return time.Time{}, false
}

// addMonthsClamped adds n months, clamping the day of month to the last day
// of the target month rather than letting it normalize forward.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	// First of the target month, then clamp the day.
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
