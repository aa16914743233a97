// Package engine is the reminder reconciliation and scheduling engine.
//
// The engine owns two entry points that converge on the same state machine:
// mutations ([Service.SetReminder] and friends) write a document and then
// reconcile, and the periodic background pass ([Service.Run]) scans and then
// reconciles. Reconciliation diffs the scan snapshot against the scheduler's
// scheduled and presented sets and corrects the difference; it keeps no
// transaction log, so any pass may be repeated or interleaved with another
// and the projection self-heals on the next run.
package engine

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/calvinalkan/remind/internal/notify"
	"github.com/calvinalkan/remind/internal/reminder"
	"github.com/calvinalkan/remind/internal/vault"
)

// graceWindow is how long after its trigger time a missed reminder is still
// considered "just missed". Inside the window recurring reminders are
// silently advanced; at or beyond it nothing retries, which keeps a long
// offline period from producing runaway catch-up scheduling.
const graceWindow = 15 * time.Minute

// Options configure a [Service]. All fields are optional.
type Options struct {
	// ScanFolder narrows scans to a subfolder of the store root. An
	// unresolvable folder falls back to the root.
	ScanFolder string

	// DefaultFolder is where standalone reminder documents are created.
	DefaultFolder string

	// CheckInterval is the period of the background reconcile pass.
	CheckInterval time.Duration

	// Alarm is the native alarm primitive. Defaults to
	// [notify.Unavailable], which routes everything through the
	// notification scheduler.
	Alarm notify.Alarmer

	// Logger receives scan and reconcile diagnostics. Defaults to a
	// discarding logger; engine failures on the background path are
	// logged, never fatal.
	Logger *slog.Logger

	// Now is the clock, for tests.
	Now func() time.Time
}

// Service wires the store, the scheduler, and the alarm primitive into the
// reconciliation state machine.
//
// The original design was single-threaded and cooperative; in Go the
// background pass and mutation-triggered passes are real goroutines, so a
// mutex serializes whole passes. Interleaving between a stale scan and a
// fresh mutation is still possible across passes and is tolerated by the
// reconciler's fallback chain rather than prevented.
type Service struct {
	mu    sync.Mutex
	store vault.Store
	sched notify.Scheduler
	alarm notify.Alarmer
	log   *slog.Logger
	now   func() time.Time

	scanFolder    string
	defaultFolder string
	checkInterval time.Duration

	// alarms tracks the native alarms this process has set, keyed like
	// scheduled notifications, so an unchanged alarm is not re-scheduled
	// on every pass. Guarded by mu.
	alarms map[pairKey]struct{}
}

// New creates a Service over the given store and scheduler.
func New(store vault.Store, sched notify.Scheduler, opts Options) *Service {
	alarm := opts.Alarm
	if alarm == nil {
		alarm = notify.Unavailable{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	defaultFolder := opts.DefaultFolder
	if defaultFolder == "" {
		defaultFolder = "Reminders"
	}

	interval := opts.CheckInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &Service{
		store:         store,
		sched:         sched,
		alarm:         alarm,
		log:           logger,
		now:           now,
		scanFolder:    opts.ScanFolder,
		defaultFolder: defaultFolder,
		checkInterval: interval,
		alarms:        make(map[pairKey]struct{}),
	}
}

// Scan returns the current reminder records. No ordering guarantee; callers
// sort by time themselves.
func (s *Service) Scan() []reminder.Reminder {
	return vault.ScanReminders(s.store, s.scanFolder)
}

// ScanReport is [Service.Scan] plus a note for every entry the walk had to
// skip, for surfacing scan degradation to a user.
func (s *Service) ScanReport() ([]reminder.Reminder, []string) {
	return vault.ScanRemindersReport(s.store, s.scanFolder)
}
