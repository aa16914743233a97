package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calvinalkan/remind/internal/frontmatter"
	"github.com/calvinalkan/remind/internal/reminder"
	"github.com/calvinalkan/remind/internal/vault"
)

// SetReminder sets or replaces the reminder on an existing document and
// reconciles the notification projection.
//
// If a native alarm was previously active for this document, it is stopped
// before the new state is written, keyed by the old timestamp, so no
// orphaned native alarm survives a time change. Fields with nil pointers
// are left as they are; explicit zero values clear the corresponding keys.
//
// A missing or unreadable document is a cleanup signal, not an error: the
// reminder is gone with its document, so the engine reconciles (which
// cancels the now-orphaned notification) and reports success. Any other
// store failure propagates.
func (s *Service) SetReminder(ctx context.Context, documentID string, at time.Time, fields reminder.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateDocument(ctx, documentID, func(old reminder.Reminder, hadOld bool) map[string]*frontmatter.Value {
		if hadOld && old.Alarm {
			s.stopAlarm(documentID, old)
		}

		return reminder.SetUpdate(at, fields)
	})
}

// ClearReminder removes the reminder from a document and reconciles. All
// four reminder keys are cleared together; see [reminder.ClearUpdate].
func (s *Service) ClearReminder(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateDocument(ctx, documentID, func(old reminder.Reminder, hadOld bool) map[string]*frontmatter.Value {
		if hadOld && old.Alarm {
			s.stopAlarm(documentID, old)
		}

		return reminder.ClearUpdate()
	})
}

// stopAlarm stops a document's native alarm and untracks it, so the
// follow-up reconcile does not stop it a second time.
func (s *Service) stopAlarm(documentID string, old reminder.Reminder) {
	s.alarm.Stop(old.AlarmID())

	delete(s.alarms, pairKey{docID: documentID, at: old.TimeString()})
}

// DeleteDocument deletes a reminder's backing document entirely and
// reconciles. A document that is already gone is treated as success.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.DeleteEntry(documentID)
	if err != nil && !errors.Is(err, vault.ErrNotFound) {
		return fmt.Errorf("delete document: %w", err)
	}

	return s.reconcileLocked(ctx)
}

// CreateStandalone creates a new reminder document in the default folder
// and reconciles. The document name is derived from title, with numeric
// suffixes on collision. Returns the new document's handle.
func (s *Service) CreateStandalone(ctx context.Context, title string, at time.Time, fields reminder.Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder := s.store.Resolve(s.store.Root(), s.defaultFolder)

	name, err := vault.UniqueDocumentName(s.store, folder, title)
	if err != nil {
		return "", fmt.Errorf("create standalone reminder: %w", err)
	}

	handle := s.store.Resolve(folder, name)

	document := frontmatter.Update(standaloneBody, reminder.SetUpdate(at, fields))

	err = s.store.WriteText(handle, document)
	if err != nil {
		return "", fmt.Errorf("create standalone reminder: %w", err)
	}

	return handle, s.reconcileLocked(ctx)
}

// standaloneBody is the body of documents created purely to hold a
// reminder.
const standaloneBody = "Created with remind.\n"

// mutateDocument runs the shared read/update/write/reconcile protocol.
// buildUpdate receives the document's current reminder state, if any, and
// returns the frontmatter update to apply.
func (s *Service) mutateDocument(ctx context.Context, documentID string, buildUpdate func(old reminder.Reminder, hadOld bool) map[string]*frontmatter.Value) error {
	document, err := s.store.ReadText(documentID)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			// Cleanup signal: the document moved or was deleted
			// externally. Reconciling cancels whatever notification is
			// left behind.
			s.log.Info("document gone, reconciling orphans", "document", documentID)

			return s.reconcileLocked(ctx)
		}

		return fmt.Errorf("read document: %w", err)
	}

	old, hadOld := reminder.FromDocument(documentID, vault.DocumentName(s.store, documentID), document)

	updated := frontmatter.Update(document, buildUpdate(old, hadOld))

	err = s.store.WriteText(documentID, updated)
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	return s.reconcileLocked(ctx)
}
