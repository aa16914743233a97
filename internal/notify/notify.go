// Package notify defines the notification scheduler and native alarm
// primitives the engine projects reminders onto.
//
// Scheduled notifications are a projection of the documents, never the
// source of truth: the reconciler rebuilds them from scan state on every
// pass, so a scheduler implementation only has to hold what it was told.
package notify

import (
	"time"
)

// Channels group notifications by purpose.
const (
	// ChannelReminders carries normally scheduled reminder notifications.
	ChannelReminders = "reminders"

	// ChannelNag carries immediate resends of unacknowledged persistent
	// reminders.
	ChannelNag = "nag"
)

// ImmediateDelay is how far in the future an "immediate" notification is
// scheduled. A short positive delay keeps immediate fires on the same
// delivery path as timed ones.
const ImmediateDelay = time.Second

// Payload is the opaque state carried on every notification so the
// reconciler can match it back to a document without any other index.
type Payload struct {
	DocumentID   string
	ReminderTime string

	// Persistent is the reminder's nag interval in minutes at scheduling
	// time. It rides along so the resend phase still knows the interval
	// when both the scan and a direct document read are unavailable.
	Persistent int
}

// Content is what a notification displays, plus its payload.
type Content struct {
	Title   string
	Body    string
	Payload Payload
}

// Scheduled describes a future notification.
type Scheduled struct {
	ID      string
	Content Content
	Trigger time.Time
}

// Presented describes a delivered, not yet dismissed notification.
type Presented struct {
	ID      string
	Content Content

	// OriginalTrigger is the trigger time this notification fired for. A
	// resend is a separate notification carrying its own trigger, so a
	// persistent reminder's nag interval is measured from its most recent
	// delivery.
	OriginalTrigger time.Time
}

// Scheduler is the narrow interface over the platform notification service.
// Implementations are externally owned; the engine never assumes they stay
// consistent with the vault and corrects drift on the next pass instead.
type Scheduler interface {
	// ScheduleAt schedules content to fire at trigger on the given
	// channel, returning the notification ID.
	ScheduleAt(content Content, trigger time.Time, channel string) (string, error)

	// ScheduleNow schedules content to fire immediately (after
	// [ImmediateDelay]).
	ScheduleNow(content Content, channel string) (string, error)

	// Cancel removes a scheduled notification. Cancelling an unknown ID
	// is a no-op.
	Cancel(id string) error

	// Scheduled lists currently scheduled (future) notifications.
	Scheduled() ([]Scheduled, error)

	// Presented lists delivered, unacknowledged notifications.
	Presented() ([]Presented, error)

	// Dismiss removes a presented notification. Dismissing an unknown ID
	// is a no-op.
	Dismiss(id string) error
}

// Alarmer is the native full-screen alarm primitive. It is platform
// specific and optional: implementations report false when they cannot
// schedule, and the engine falls back to a normal notification.
type Alarmer interface {
	// Schedule sets a native alarm keyed by id (the trigger time's epoch
	// milliseconds). Reports whether the alarm was actually set.
	Schedule(title, body string, epochMillis, id int64) bool

	// Stop cancels the native alarm keyed by id. Reports whether an alarm
	// was stopped.
	Stop(id int64) bool
}

// Unavailable is the [Alarmer] for platforms without a native alarm
// primitive. Every schedule attempt reports false so callers take the
// notification fallback.
type Unavailable struct{}

func (Unavailable) Schedule(_, _ string, _, _ int64) bool { return false }

func (Unavailable) Stop(_ int64) bool { return false }

var _ Alarmer = Unavailable{}
