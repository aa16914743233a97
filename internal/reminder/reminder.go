// Package reminder defines the Reminder record and the frontmatter encoding
// that is its entire durable representation.
//
// A reminder exists if and only if its backing document currently has a
// valid, parseable reminder timestamp in frontmatter. There is no persisted
// reminder entity independent of the document: deleting the frontmatter key
// deletes the reminder, and every scan reconstructs the records from
// scratch.
package reminder

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/calvinalkan/remind/internal/frontmatter"
)

// Frontmatter keys. These four keys are the entire durable representation
// of a reminder; there is no separate index or database.
const (
	KeyDatetime   = "reminder_datetime"
	KeyRecurrent  = "reminder_recurrent"
	KeyAlarm      = "reminder_alarm"
	KeyPersistent = "reminder_persistent"
)

// TimeLayout is the local wall-clock timestamp form used in frontmatter.
// No timezone offset: all comparisons are local wall clock.
const TimeLayout = "2006-01-02T15:04:05"

// snippetLen caps the body excerpt carried on notifications.
const snippetLen = 100

// Reminder is derived from a document on every scan, never stored as a
// discrete object.
type Reminder struct {
	// DocumentID is the opaque store handle of the backing document.
	DocumentID string

	// DocumentName is the display name derived from the document location.
	DocumentName string

	// Time is the local wall-clock trigger time.
	Time time.Time

	// Rule is the optional recurrence rule string ("daily", "3 days", ...).
	Rule string

	// Alarm routes scheduling through the native full-screen alarm
	// primitive instead of a normal notification.
	Alarm bool

	// Persistent is the nag interval in minutes. If positive, an
	// unacknowledged notification is resent at this interval until
	// dismissed or the document changes.
	Persistent int

	// Content is the document body with the header stripped, capped to a
	// short excerpt for notification text.
	Content string
}

// TimeString returns the frontmatter encoding of the trigger time.
func (r Reminder) TimeString() string {
	return FormatTime(r.Time)
}

// AlarmID returns the integer ID used to key the native alarm primitive:
// the trigger time's epoch milliseconds.
func (r Reminder) AlarmID() int64 {
	return r.Time.UnixMilli()
}

// ParseTime parses a frontmatter timestamp as local wall-clock time.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.Local)
}

// FormatTime formats t in the frontmatter timestamp form.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FromDocument derives a reminder from a document's raw text.
//
// Returns (zero, false) when the document has no valid reminder timestamp:
// an absent key and an unparseable value look the same to the caller, since
// both mean "this document carries no reminder". Malformed related keys
// degrade individually (bad persistent value reads as zero) rather than
// invalidating the reminder.
func FromDocument(id, name, document string) (Reminder, bool) {
	fields, body := frontmatter.Parse(document)

	raw, ok := fields.GetString(KeyDatetime)
	if !ok {
		return Reminder{}, false
	}

	at, err := ParseTime(raw)
	if err != nil {
		return Reminder{}, false
	}

	rec := Reminder{
		DocumentID:   id,
		DocumentName: name,
		Time:         at,
		Content:      snippet(body),
	}

	if rule, ok := fields.GetString(KeyRecurrent); ok {
		rec.Rule = strings.TrimSpace(rule)
	}

	if alarm, ok := fields.GetString(KeyAlarm); ok {
		rec.Alarm = isTruthy(alarm)
	}

	if persistent, ok := fields.GetString(KeyPersistent); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(persistent)); err == nil && n > 0 {
			rec.Persistent = n
		}
	}

	return rec, true
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}

	return false
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= snippetLen {
		return body
	}

	// Back off to a rune boundary; a cut inside a multi-byte rune would put
	// invalid UTF-8 into notification bodies.
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}

	return body[:cut]
}
