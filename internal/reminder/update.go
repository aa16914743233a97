package reminder

import (
	"strconv"
	"time"

	"github.com/calvinalkan/remind/internal/frontmatter"
)

// Fields describes a reminder mutation. Nil pointer fields mean "leave as
// is"; a non-nil pointer with a zero value means "clear".
type Fields struct {
	Rule       *string
	Alarm      *bool
	Persistent *int
}

// RuleOf builds a Fields rule entry. Convenience for callers assembling
// updates from parsed flags.
func RuleOf(rule string) *string { return &rule }

// AlarmOf builds a Fields alarm entry.
func AlarmOf(on bool) *bool { return &on }

// PersistentOf builds a Fields persistent entry.
func PersistentOf(minutes int) *int { return &minutes }

// SetUpdate builds the frontmatter update that sets a reminder time on a
// document and conditionally adjusts the related keys.
func SetUpdate(at time.Time, fields Fields) map[string]*frontmatter.Value {
	updates := map[string]*frontmatter.Value{
		KeyDatetime: valueOf(FormatTime(at)),
	}

	if fields.Rule != nil {
		if *fields.Rule == "" {
			updates[KeyRecurrent] = nil
		} else {
			updates[KeyRecurrent] = valueOf(*fields.Rule)
		}
	}

	if fields.Alarm != nil {
		if !*fields.Alarm {
			updates[KeyAlarm] = nil
		} else {
			updates[KeyAlarm] = valueOf("true")
		}
	}

	if fields.Persistent != nil {
		if *fields.Persistent <= 0 {
			updates[KeyPersistent] = nil
		} else {
			updates[KeyPersistent] = valueOf(strconv.Itoa(*fields.Persistent))
		}
	}

	return updates
}

// ClearUpdate builds the frontmatter update that removes a reminder from a
// document. All four keys are cleared together so a later re-created
// reminder cannot silently reactivate stale recurrence, alarm, or nag
// settings.
func ClearUpdate() map[string]*frontmatter.Value {
	return map[string]*frontmatter.Value{
		KeyDatetime:   nil,
		KeyRecurrent:  nil,
		KeyAlarm:      nil,
		KeyPersistent: nil,
	}
}

// AdvanceUpdate builds the frontmatter update that moves only the trigger
// time, used when a missed recurring reminder is silently advanced.
func AdvanceUpdate(next time.Time) map[string]*frontmatter.Value {
	return map[string]*frontmatter.Value{
		KeyDatetime: valueOf(FormatTime(next)),
	}
}

func valueOf(s string) *frontmatter.Value {
	v := frontmatter.String(s)

	return &v
}
