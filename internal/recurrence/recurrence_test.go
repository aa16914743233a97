package recurrence_test

import (
	"testing"
	"time"

	"github.com/calvinalkan/remind/internal/recurrence"
)

// Contract: canonical tokens and "<N> <unit>" rules advance by the expected
// interval, preserving the wall-clock time of day.
func Test_Next_AdvancesByInterval_When_RuleValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		current string
		rule    string
		want    string
	}{
		{name: "daily", current: "2024-01-15T09:00:00", rule: "daily", want: "2024-01-16T09:00:00"},
		{name: "day alias", current: "2024-01-15T09:00:00", rule: "day", want: "2024-01-16T09:00:00"},
		{name: "weekly", current: "2024-01-15T09:00:00", rule: "weekly", want: "2024-01-22T09:00:00"},
		{name: "monthly", current: "2024-01-15T09:00:00", rule: "monthly", want: "2024-02-15T09:00:00"},
		{name: "yearly", current: "2024-01-15T09:00:00", rule: "yearly", want: "2025-01-15T09:00:00"},
		{name: "three days", current: "2024-01-15T09:00:00", rule: "3 days", want: "2024-01-18T09:00:00"},
		{name: "singular unit", current: "2024-01-15T09:00:00", rule: "3 day", want: "2024-01-18T09:00:00"},
		{name: "thirty minutes", current: "2024-01-15T09:00:00", rule: "30 minutes", want: "2024-01-15T09:30:00"},
		{name: "two hours", current: "2024-01-15T23:30:00", rule: "2 hours", want: "2024-01-16T01:30:00"},
		{name: "two weeks", current: "2024-01-15T09:00:00", rule: "2 weeks", want: "2024-01-29T09:00:00"},
		{name: "uppercase trimmed", current: "2024-01-15T09:00:00", rule: "  Daily ", want: "2024-01-16T09:00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			next, ok := recurrence.Next(parseLocal(t, tc.current), tc.rule)
			if !ok {
				t.Fatalf("rule %q unexpectedly invalid", tc.rule)
			}

			want := parseLocal(t, tc.want)
			if !next.Equal(want) {
				t.Fatalf("rule %q from %s: got %s, want %s", tc.rule, tc.current, next, want)
			}
		})
	}
}

// Contract: month and year steps clamp to the end of a shorter target month
// instead of normalizing into the month after.
func Test_Next_ClampsToMonthEnd_When_TargetMonthShorter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		current string
		rule    string
		want    string
	}{
		{name: "jan 31 to leap feb", current: "2024-01-31T09:00:00", rule: "monthly", want: "2024-02-29T09:00:00"},
		{name: "jan 31 to short feb", current: "2023-01-31T09:00:00", rule: "monthly", want: "2023-02-28T09:00:00"},
		{name: "mar 31 to apr 30", current: "2024-03-31T09:00:00", rule: "monthly", want: "2024-04-30T09:00:00"},
		{name: "leap day yearly", current: "2024-02-29T09:00:00", rule: "yearly", want: "2025-02-28T09:00:00"},
		{name: "two months over feb", current: "2023-12-31T09:00:00", rule: "2 months", want: "2024-02-29T09:00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			next, ok := recurrence.Next(parseLocal(t, tc.current), tc.rule)
			if !ok {
				t.Fatalf("rule %q unexpectedly invalid", tc.rule)
			}

			want := parseLocal(t, tc.want)
			if !next.Equal(want) {
				t.Fatalf("rule %q from %s: got %s, want %s", tc.rule, tc.current, next, want)
			}
		})
	}
}

// Contract: unrecognized rules and same-instant steps report invalid so
// callers treat the reminder as one-shot instead of failing.
func Test_Next_ReportsInvalid_When_RuleUnusable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rule string
	}{
		{name: "garbage word", rule: "banana"},
		{name: "empty", rule: ""},
		{name: "whitespace only", rule: "   "},
		{name: "too many tokens", rule: "3 days ago"},
		{name: "non numeric count", rule: "three days"},
		{name: "unknown unit", rule: "3 fortnights"},
		{name: "zero step", rule: "0 minutes"},
	}

	current := parseLocal(t, "2024-01-15T09:00:00")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if next, ok := recurrence.Next(current, tc.rule); ok {
				t.Fatalf("rule %q unexpectedly valid, got %s", tc.rule, next)
			}
		})
	}
}

func parseLocal(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}

	return parsed
}
