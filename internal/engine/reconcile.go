package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calvinalkan/remind/internal/frontmatter"
	"github.com/calvinalkan/remind/internal/notify"
	"github.com/calvinalkan/remind/internal/recurrence"
	"github.com/calvinalkan/remind/internal/reminder"
	"github.com/calvinalkan/remind/internal/vault"
)

// Reconcile runs a full reconciliation pass against a fresh scan.
//
// Running Reconcile twice in a row with no intervening state change is a
// no-op on the second run: nothing is scheduled and nothing is cancelled.
// The background trigger relies on this, since it may fire arbitrarily
// often.
func (s *Service) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reconcileLocked(ctx)
}

// ReconcileWith runs a pass against a caller-supplied scan snapshot. The
// snapshot may be stale relative to the store; the resend phase compensates
// with its fallback chain.
func (s *Service) ReconcileWith(ctx context.Context, active []reminder.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reconcileWithLocked(ctx, active)
}

func (s *Service) reconcileLocked(ctx context.Context) error {
	return s.reconcileWithLocked(ctx, vault.ScanReminders(s.store, s.scanFolder))
}

// reconcileWithLocked is the three-phase state machine. Phase order
// matters: later phases assume earlier ones already pruned stale entries.
func (s *Service) reconcileWithLocked(ctx context.Context, active []reminder.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	byID := make(map[string]reminder.Reminder, len(active))
	for _, rec := range active {
		byID[rec.DocumentID] = rec
	}

	resent, err := s.resendPersistent(byID)
	if err != nil {
		return err
	}

	remaining, err := s.cancelStale(byID, resent)
	if err != nil {
		return err
	}

	s.cancelStaleAlarms(byID)

	return s.scheduleMissing(active, remaining)
}

// resendPersistent is phase 1: every presented (visible, unacknowledged)
// notification whose reminder has a nag interval that has elapsed is
// dismissed and rescheduled as an immediate notification.
//
// The reminder behind a presented notification is looked up through an
// ordered fallback chain: the scan snapshot, then a direct document read,
// then the payload embedded in the notification itself. The chain exists
// because a pass may run against a scan that is stale relative to a
// concurrent mutation; a persistent reminder must not be lost to that gap.
// The payload fallback is only taken when the direct read fails outright -
// a readable document without a reminder means the reminder was deleted,
// and a deleted reminder must not keep nagging.
//
// Returns the IDs of the notifications scheduled by the resends. The cancel
// phase must exempt them: a resend triggered through the fallback chain has
// no reminder in the scan snapshot, and cancelling it in the same pass would
// lose the persistent reminder the resend just preserved.
func (s *Service) resendPersistent(byID map[string]reminder.Reminder) (map[string]struct{}, error) {
	presented, err := s.sched.Presented()
	if err != nil {
		return nil, fmt.Errorf("list presented notifications: %w", err)
	}

	resent := make(map[string]struct{})
	now := s.now()

	for _, p := range presented {
		docID := p.Content.Payload.DocumentID

		interval, content, ok := s.resolvePresented(p, byID)
		if !ok || interval <= 0 {
			continue
		}

		if now.Sub(p.OriginalTrigger) <= time.Duration(interval)*time.Minute {
			continue
		}

		err := s.sched.Dismiss(p.ID)
		if err != nil {
			return nil, fmt.Errorf("dismiss notification %s: %w", p.ID, err)
		}

		id, err := s.sched.ScheduleNow(content, notify.ChannelNag)
		if err != nil {
			return nil, fmt.Errorf("resend notification for %s: %w", docID, err)
		}

		resent[id] = struct{}{}

		s.log.Info("resent persistent reminder", "document", docID, "interval_minutes", interval)
	}

	return resent, nil
}

// resolvePresented resolves the nag interval and resend content for a
// presented notification via the scan -> direct read -> payload chain.
func (s *Service) resolvePresented(p notify.Presented, byID map[string]reminder.Reminder) (int, notify.Content, bool) {
	docID := p.Content.Payload.DocumentID

	if rec, found := byID[docID]; found {
		return rec.Persistent, s.content(rec), true
	}

	document, err := s.store.ReadText(docID)
	if err == nil {
		rec, hasReminder := reminder.FromDocument(docID, vault.DocumentName(s.store, docID), document)
		if !hasReminder {
			// Deleted reminder: stop nagging.
			return 0, notify.Content{}, false
		}

		return rec.Persistent, s.content(rec), true
	}

	// Transient read failure: trust the notification's own payload.
	return p.Content.Payload.Persistent, p.Content, true
}

// cancelStale is phase 2: every scheduled (future) notification that no
// longer matches scan state is cancelled - either its document has no
// active reminder anymore, or the reminder time changed and phase 3 will
// schedule a fresh one. Duplicate notifications for the same
// (document, time) pair are cancelled down to one, enforcing the
// at-most-one invariant.
//
// Notifications in resent were scheduled by phase 1 of this same pass and
// are kept unconditionally; their reminder may be invisible to the scan
// snapshot by design.
//
// Returns the (document, time) pairs that remain scheduled.
func (s *Service) cancelStale(byID map[string]reminder.Reminder, resent map[string]struct{}) (map[pairKey]struct{}, error) {
	scheduled, err := s.sched.Scheduled()
	if err != nil {
		return nil, fmt.Errorf("list scheduled notifications: %w", err)
	}

	remaining := make(map[pairKey]struct{})

	for _, sch := range scheduled {
		payload := sch.Content.Payload
		key := pairKey{docID: payload.DocumentID, at: payload.ReminderTime}

		if _, justResent := resent[sch.ID]; justResent {
			remaining[key] = struct{}{}

			continue
		}

		rec, found := byID[payload.DocumentID]

		stale := !found || rec.TimeString() != payload.ReminderTime

		_, duplicate := remaining[key]

		if !stale && !duplicate {
			remaining[key] = struct{}{}

			continue
		}

		err := s.sched.Cancel(sch.ID)
		if err != nil {
			return nil, fmt.Errorf("cancel notification %s: %w", sch.ID, err)
		}

		s.log.Info("cancelled stale notification", "document", payload.DocumentID, "time", payload.ReminderTime)
	}

	return remaining, nil
}

// scheduleMissing is phase 3: every active reminder that should have a
// scheduled notification and doesn't gets one, with overdue handling.
//
//   - Past by less than the grace window: just missed. Skipped entirely,
//     unless recurring, in which case it is silently advanced to its next
//     occurrence and no notification fires for the missed instance.
//   - Past by the grace window or more: too stale to act on. Skipped; this
//     pass does not retry recurrence advancement beyond the window. That is
//     a policy, not a bug: it prevents runaway catch-up after long offline
//     periods.
//   - Future and not already scheduled: scheduled. Alarm reminders try the
//     native alarm primitive first and fall back to a normal notification
//     when the platform reports failure.
func (s *Service) scheduleMissing(active []reminder.Reminder, scheduled map[pairKey]struct{}) error {
	now := s.now()

	for _, rec := range active {
		if !rec.Time.After(now) {
			overdue := now.Sub(rec.Time)
			if overdue < graceWindow && rec.Rule != "" {
				s.advance(rec, now)
			}

			continue
		}

		key := pairKey{docID: rec.DocumentID, at: rec.TimeString()}
		if _, exists := scheduled[key]; exists {
			continue
		}

		if rec.Alarm {
			if _, exists := s.alarms[key]; exists {
				continue
			}

			if s.alarm.Schedule(notificationTitle, s.content(rec).Body, rec.Time.UnixMilli(), rec.AlarmID()) {
				s.alarms[key] = struct{}{}

				s.log.Info("scheduled native alarm", "document", rec.DocumentID, "time", rec.TimeString())

				continue
			}
		}

		_, err := s.sched.ScheduleAt(s.content(rec), rec.Time, notify.ChannelReminders)
		if err != nil {
			return fmt.Errorf("schedule notification for %s: %w", rec.DocumentID, err)
		}

		s.log.Info("scheduled notification", "document", rec.DocumentID, "time", rec.TimeString())
	}

	return nil
}

// cancelStaleAlarms mirrors cancelStale for the native alarm primitive:
// every tracked alarm whose reminder no longer matches scan state is
// stopped and untracked, so a follow-up pass can set a fresh one. The
// tracked set lives for the process only; after a restart alarms are
// re-derived from documents like the rest of the projection.
func (s *Service) cancelStaleAlarms(byID map[string]reminder.Reminder) {
	for key := range s.alarms {
		rec, found := byID[key.docID]
		if found && rec.Alarm && rec.TimeString() == key.at {
			continue
		}

		if at, err := reminder.ParseTime(key.at); err == nil {
			s.alarm.Stop(at.UnixMilli())
		}

		delete(s.alarms, key)

		s.log.Info("stopped stale native alarm", "document", key.docID, "time", key.at)
	}
}

// advance persists the next occurrence of a just-missed recurring reminder.
// The write deliberately bypasses the mutation entry points: those trigger
// a fresh reconcile, and the advance happens inside one.
//
// Advance failures are logged and dropped; the reminder stays missed and a
// later pass inside the grace window retries.
func (s *Service) advance(rec reminder.Reminder, now time.Time) {
	next, ok := recurrence.Next(rec.Time, rec.Rule)
	if !ok || !next.After(now) {
		return
	}

	document, err := s.store.ReadText(rec.DocumentID)
	if err != nil {
		if !errors.Is(err, vault.ErrNotFound) {
			s.log.Warn("auto-advance read failed", "document", rec.DocumentID, "error", err)
		}

		return
	}

	updated := frontmatter.Update(document, reminder.AdvanceUpdate(next))

	err = s.store.WriteText(rec.DocumentID, updated)
	if err != nil {
		s.log.Warn("auto-advance write failed", "document", rec.DocumentID, "error", err)

		return
	}

	s.log.Info("auto-advanced recurring reminder",
		"document", rec.DocumentID,
		"from", rec.TimeString(),
		"to", reminder.FormatTime(next),
	)
}

// notificationTitle heads every reminder notification.
const notificationTitle = "Reminder"

// content builds the notification content for a reminder. The payload
// carries everything the reconciler needs to match the notification back to
// its document, including the nag interval for the payload fallback.
func (s *Service) content(rec reminder.Reminder) notify.Content {
	return notify.Content{
		Title: notificationTitle,
		Body:  fmt.Sprintf("%s: %s", rec.DocumentName, rec.Content),
		Payload: notify.Payload{
			DocumentID:   rec.DocumentID,
			ReminderTime: rec.TimeString(),
			Persistent:   rec.Persistent,
		},
	}
}

// pairKey identifies the (document, reminder time) pair a scheduled
// notification was created for.
type pairKey struct {
	docID string
	at    string
}
