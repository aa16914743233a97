// Package optimistic wraps the engine's mutations behind an immediately
// updated in-memory list, so a UI can render the outcome of an operation
// before the vault write and reconcile finish.
//
// Each operation mutates the cached list synchronously, runs the real
// mutation in its own goroutine, and restores the previous list if the
// mutation fails. Operations are independent and not serialized against
// each other; the number in flight is exposed as a single "is syncing"
// flag. The cache is a convenience projection only - the vault remains the
// source of truth and a later scan replaces the cache wholesale.
package optimistic

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calvinalkan/remind/internal/reminder"
)

// Mutator is the slice of the engine the cache drives.
type Mutator interface {
	SetReminder(ctx context.Context, documentID string, at time.Time, fields reminder.Fields) error
	ClearReminder(ctx context.Context, documentID string) error
	DeleteDocument(ctx context.Context, documentID string) error
	CreateStandalone(ctx context.Context, title string, at time.Time, fields reminder.Fields) (string, error)
}

// Cache is the optimistic reminder list. The zero value is not usable; use
// [NewCache].
type Cache struct {
	mu        sync.Mutex
	reminders []reminder.Reminder
	engine    Mutator
	inFlight  atomic.Int64
	tempSeq   atomic.Int64

	// onError surfaces failed operations after their rollback. Never nil.
	onError func(op string, err error)

	// wg tracks in-flight operations so tests and shutdown can wait for
	// them.
	wg sync.WaitGroup
}

// NewCache creates a cache over the given engine. onError, if non-nil, is
// called from the operation's goroutine after a failed mutation has been
// rolled back.
func NewCache(engine Mutator, onError func(op string, err error)) *Cache {
	if onError == nil {
		onError = func(string, error) {}
	}

	return &Cache{engine: engine, onError: onError}
}

// Reminders returns a snapshot copy of the cached list.
func (c *Cache) Reminders() []reminder.Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.reminders)
}

// Refresh replaces the cached list with a fresh scan result.
func (c *Cache) Refresh(reminders []reminder.Reminder) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reminders = slices.Clone(reminders)
}

// Syncing reports whether any operation is still in flight.
func (c *Cache) Syncing() bool {
	return c.inFlight.Load() > 0
}

// Wait blocks until every in-flight operation has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Add creates a standalone reminder. The cached list gains a placeholder
// entry immediately; the placeholder's handle is replaced by the real one
// when the creation succeeds, or the entry is rolled back when it fails.
func (c *Cache) Add(ctx context.Context, title string, at time.Time, fields reminder.Fields) {
	tempID := fmt.Sprintf("temp-%d", c.tempSeq.Add(1))

	placeholder := reminder.Reminder{
		DocumentID:   tempID,
		DocumentName: title,
		Time:         at,
		Content:      title,
	}
	applyFields(&placeholder, fields)

	previous := c.swap(func(list []reminder.Reminder) []reminder.Reminder {
		return append(list, placeholder)
	})

	c.launch("add reminder", previous, func() error {
		handle, err := c.engine.CreateStandalone(ctx, title, at, fields)
		if err != nil {
			return err
		}

		c.rename(tempID, handle)

		return nil
	})
}

// Edit rewrites an existing reminder's time and fields.
func (c *Cache) Edit(ctx context.Context, target reminder.Reminder, at time.Time, fields reminder.Fields) {
	previous := c.swap(func(list []reminder.Reminder) []reminder.Reminder {
		for i := range list {
			if list[i].DocumentID != target.DocumentID {
				continue
			}

			list[i].Time = at
			applyFields(&list[i], fields)
		}

		return list
	})

	c.launch("edit reminder", previous, func() error {
		return c.engine.SetReminder(ctx, target.DocumentID, at, fields)
	})
}

// Delete removes a reminder. With deleteDocument, the backing document is
// deleted too; otherwise only the reminder keys are cleared.
func (c *Cache) Delete(ctx context.Context, target reminder.Reminder, deleteDocument bool) {
	previous := c.swap(func(list []reminder.Reminder) []reminder.Reminder {
		return slices.DeleteFunc(list, func(r reminder.Reminder) bool {
			return r.DocumentID == target.DocumentID
		})
	})

	c.launch("delete reminder", previous, func() error {
		if deleteDocument {
			return c.engine.DeleteDocument(ctx, target.DocumentID)
		}

		return c.engine.ClearReminder(ctx, target.DocumentID)
	})
}

// swap applies mutate to a copy of the cached list and returns the previous
// list for rollback.
func (c *Cache) swap(mutate func([]reminder.Reminder) []reminder.Reminder) []reminder.Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.reminders
	c.reminders = mutate(slices.Clone(previous))

	return previous
}

// rename rewrites a placeholder handle to the real one after a successful
// create.
func (c *Cache) rename(oldID, newID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.reminders {
		if c.reminders[i].DocumentID == oldID {
			c.reminders[i].DocumentID = newID
		}
	}
}

// launch runs op asynchronously, rolling the cache back to previous and
// surfacing the error if it fails.
func (c *Cache) launch(name string, previous []reminder.Reminder, op func() error) {
	c.inFlight.Add(1)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		defer c.inFlight.Add(-1)

		err := op()
		if err == nil {
			return
		}

		c.mu.Lock()
		c.reminders = previous
		c.mu.Unlock()

		c.onError(name, err)
	}()
}

func applyFields(rec *reminder.Reminder, fields reminder.Fields) {
	if fields.Rule != nil {
		rec.Rule = *fields.Rule
	}

	if fields.Alarm != nil {
		rec.Alarm = *fields.Alarm
	}

	if fields.Persistent != nil {
		rec.Persistent = *fields.Persistent
	}
}
