package reminder_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/calvinalkan/remind/internal/frontmatter"
	"github.com/calvinalkan/remind/internal/reminder"
)

// Contract: a reminder is derived from the four frontmatter keys plus a body
// excerpt; malformed optional keys degrade individually instead of
// invalidating the whole reminder.
func Test_FromDocument_DerivesReminder_When_DatetimeValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		document string
		want     reminder.Reminder
	}{
		{
			name: "full reminder",
			document: strings.Join([]string{
				"---",
				"reminder_datetime: 2024-01-15T09:00:00",
				"reminder_recurrent: daily",
				"reminder_alarm: true",
				"reminder_persistent: 5",
				"---",
				"Buy milk.",
			}, "\n"),
			want: reminder.Reminder{
				DocumentID:   "/notes/groceries.md",
				DocumentName: "groceries",
				Time:         localTime(t, "2024-01-15T09:00:00"),
				Rule:         "daily",
				Alarm:        true,
				Persistent:   5,
				Content:      "Buy milk.",
			},
		},
		{
			name: "datetime only",
			document: strings.Join([]string{
				"---",
				"reminder_datetime: 2024-01-15T09:00:00",
				"---",
				"Body.",
			}, "\n"),
			want: reminder.Reminder{
				DocumentID:   "/notes/groceries.md",
				DocumentName: "groceries",
				Time:         localTime(t, "2024-01-15T09:00:00"),
				Content:      "Body.",
			},
		},
		{
			name: "malformed optional keys degrade",
			document: strings.Join([]string{
				"---",
				"reminder_datetime: 2024-01-15T09:00:00",
				"reminder_alarm: maybe",
				"reminder_persistent: soon",
				"---",
				"Body.",
			}, "\n"),
			want: reminder.Reminder{
				DocumentID:   "/notes/groceries.md",
				DocumentName: "groceries",
				Time:         localTime(t, "2024-01-15T09:00:00"),
				Content:      "Body.",
			},
		},
		{
			name: "truthy alarm spellings",
			document: strings.Join([]string{
				"---",
				"reminder_datetime: 2024-01-15T09:00:00",
				"reminder_alarm: Yes",
				"---",
				"",
			}, "\n"),
			want: reminder.Reminder{
				DocumentID:   "/notes/groceries.md",
				DocumentName: "groceries",
				Time:         localTime(t, "2024-01-15T09:00:00"),
				Alarm:        true,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := reminder.FromDocument("/notes/groceries.md", "groceries", tc.document)
			if !ok {
				t.Fatal("expected a reminder")
			}

			if got != tc.want {
				t.Fatalf("reminder mismatch:\ngot  %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

// Contract: an absent key and an unparseable timestamp both mean "no
// reminder"; neither is an error.
func Test_FromDocument_ReturnsFalse_When_DatetimeMissingOrInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		document string
	}{
		{name: "no header", document: "Just a note.\n"},
		{name: "no datetime key", document: "---\ntags: [inbox]\n---\nBody.\n"},
		{name: "garbage datetime", document: "---\nreminder_datetime: tomorrow\n---\nBody.\n"},
		{name: "date without time", document: "---\nreminder_datetime: 2024-01-15\n---\nBody.\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if rec, ok := reminder.FromDocument("/a.md", "a", tc.document); ok {
				t.Fatalf("expected no reminder, got %+v", rec)
			}
		})
	}
}

// Contract: the notification excerpt is capped so a long body never produces
// an oversized notification.
func Test_FromDocument_CapsContent_When_BodyLong(t *testing.T) {
	t.Parallel()

	document := "---\nreminder_datetime: 2024-01-15T09:00:00\n---\n" + strings.Repeat("x", 500)

	rec, ok := reminder.FromDocument("/a.md", "a", document)
	if !ok {
		t.Fatal("expected a reminder")
	}

	if len(rec.Content) != 100 {
		t.Fatalf("expected 100-byte excerpt, got %d bytes", len(rec.Content))
	}
}

// Contract: the excerpt cap lands on a rune boundary. A body whose 100th
// byte falls inside a multi-byte rune must not leak invalid UTF-8 into
// notification text.
func Test_FromDocument_CapsContentOnRuneBoundary_When_BodyMultiByte(t *testing.T) {
	t.Parallel()

	// 99 ASCII bytes followed by two 3-byte runes puts the cap mid-rune.
	body := strings.Repeat("x", 99) + "世界"
	document := "---\nreminder_datetime: 2024-01-15T09:00:00\n---\n" + body

	rec, ok := reminder.FromDocument("/a.md", "a", document)
	if !ok {
		t.Fatal("expected a reminder")
	}

	if !utf8.ValidString(rec.Content) {
		t.Fatalf("excerpt is not valid UTF-8: %q", rec.Content)
	}

	if rec.Content != strings.Repeat("x", 99) {
		t.Fatalf("excerpt not backed off to the rune boundary: %q", rec.Content)
	}
}

// Contract: the alarm primitive is keyed by the trigger time's epoch
// milliseconds, so equal times collide and changed times do not.
func Test_AlarmID_IsEpochMillis(t *testing.T) {
	t.Parallel()

	at := localTime(t, "2024-01-15T09:00:00")
	rec := reminder.Reminder{Time: at}

	if got := rec.AlarmID(); got != at.UnixMilli() {
		t.Fatalf("got %d, want %d", got, at.UnixMilli())
	}
}

// Contract: SetUpdate only touches keys the caller asked about; nil Fields
// entries leave existing frontmatter alone.
func Test_SetUpdate_LeavesUnsetFields_When_PointersNil(t *testing.T) {
	t.Parallel()

	document := strings.Join([]string{
		"---",
		"reminder_datetime: 2024-01-15T09:00:00",
		"reminder_recurrent: weekly",
		"reminder_alarm: true",
		"---",
		"Body.",
	}, "\n")

	at := localTime(t, "2024-02-01T10:00:00")

	got := frontmatter.Update(document, reminder.SetUpdate(at, reminder.Fields{}))

	rec, ok := reminder.FromDocument("/a.md", "a", got)
	if !ok {
		t.Fatal("expected a reminder after update")
	}

	if !rec.Time.Equal(at) {
		t.Fatalf("time not updated: got %s", rec.TimeString())
	}

	if rec.Rule != "weekly" || !rec.Alarm {
		t.Fatalf("unrelated keys changed: %+v", rec)
	}
}

// Contract: zero-valued Fields pointers clear their keys instead of writing
// empty values.
func Test_SetUpdate_ClearsKeys_When_ZeroValuesGiven(t *testing.T) {
	t.Parallel()

	document := strings.Join([]string{
		"---",
		"reminder_datetime: 2024-01-15T09:00:00",
		"reminder_recurrent: weekly",
		"reminder_alarm: true",
		"reminder_persistent: 5",
		"---",
		"Body.",
	}, "\n")

	at := localTime(t, "2024-02-01T10:00:00")

	update := reminder.SetUpdate(at, reminder.Fields{
		Rule:       reminder.RuleOf(""),
		Alarm:      reminder.AlarmOf(false),
		Persistent: reminder.PersistentOf(0),
	})

	fields, _ := frontmatter.Parse(frontmatter.Update(document, update))

	for _, key := range []string{reminder.KeyRecurrent, reminder.KeyAlarm, reminder.KeyPersistent} {
		if _, ok := fields.Get(key); ok {
			t.Fatalf("expected %s to be cleared", key)
		}
	}

	requireField(t, fields, reminder.KeyDatetime, "2024-02-01T10:00:00")
}

// Contract: clearing a reminder removes all four keys together so a future
// reminder on the same document starts from a clean slate.
func Test_ClearUpdate_RemovesAllReminderKeys(t *testing.T) {
	t.Parallel()

	document := strings.Join([]string{
		"---",
		"title: groceries",
		"reminder_datetime: 2024-01-15T09:00:00",
		"reminder_recurrent: weekly",
		"reminder_alarm: true",
		"reminder_persistent: 5",
		"---",
		"Body.",
	}, "\n")

	fields, body := frontmatter.Parse(frontmatter.Update(document, reminder.ClearUpdate()))

	for _, key := range []string{
		reminder.KeyDatetime, reminder.KeyRecurrent, reminder.KeyAlarm, reminder.KeyPersistent,
	} {
		if _, ok := fields.Get(key); ok {
			t.Fatalf("expected %s to be cleared", key)
		}
	}

	requireField(t, fields, "title", "groceries")

	if body != "Body." {
		t.Fatalf("body changed: %q", body)
	}
}

// Contract: a silent advance rewrites only the trigger time.
func Test_AdvanceUpdate_TouchesOnlyDatetime(t *testing.T) {
	t.Parallel()

	document := strings.Join([]string{
		"---",
		"reminder_datetime: 2024-01-15T09:00:00",
		"reminder_recurrent: daily",
		"reminder_persistent: 5",
		"---",
		"Body.",
	}, "\n")

	next := localTime(t, "2024-01-16T09:00:00")

	fields, _ := frontmatter.Parse(frontmatter.Update(document, reminder.AdvanceUpdate(next)))

	requireField(t, fields, reminder.KeyDatetime, "2024-01-16T09:00:00")
	requireField(t, fields, reminder.KeyRecurrent, "daily")
	requireField(t, fields, reminder.KeyPersistent, "5")
}

func requireField(t *testing.T, fields *frontmatter.Fields, key, want string) {
	t.Helper()

	got, ok := fields.GetString(key)
	if !ok {
		t.Fatalf("missing field %q", key)
	}

	if got != want {
		t.Fatalf("field %q: got %q, want %q", key, got, want)
	}
}

func localTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := reminder.ParseTime(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}

	return parsed
}
