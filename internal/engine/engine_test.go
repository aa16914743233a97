package engine_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/calvinalkan/remind/internal/engine"
	"github.com/calvinalkan/remind/internal/notify"
	"github.com/calvinalkan/remind/internal/reminder"
	"github.com/calvinalkan/remind/internal/vault"
)

// spySched counts scheduler calls on top of the in-process scheduler so
// tests can assert that a pass was a no-op.
type spySched struct {
	*notify.Memory

	scheduleAtCalls  int
	scheduleNowCalls int
	cancelCalls      int
	dismissCalls     int
}

func (s *spySched) ScheduleAt(content notify.Content, trigger time.Time, channel string) (string, error) {
	s.scheduleAtCalls++

	return s.Memory.ScheduleAt(content, trigger, channel)
}

func (s *spySched) ScheduleNow(content notify.Content, channel string) (string, error) {
	s.scheduleNowCalls++

	return s.Memory.ScheduleNow(content, channel)
}

func (s *spySched) Cancel(id string) error {
	s.cancelCalls++

	return s.Memory.Cancel(id)
}

func (s *spySched) Dismiss(id string) error {
	s.dismissCalls++

	return s.Memory.Dismiss(id)
}

func (s *spySched) reset() {
	s.scheduleAtCalls = 0
	s.scheduleNowCalls = 0
	s.cancelCalls = 0
	s.dismissCalls = 0
}

// fakeAlarm records native alarm calls and succeeds or fails on command.
type fakeAlarm struct {
	ok        bool
	scheduled []int64
	stopped   []int64
}

func (a *fakeAlarm) Schedule(_, _ string, _, id int64) bool {
	a.scheduled = append(a.scheduled, id)

	return a.ok
}

func (a *fakeAlarm) Stop(id int64) bool {
	a.stopped = append(a.stopped, id)

	return true
}

// fixture wires a service over an in-memory store and scheduler with a
// movable clock.
type fixture struct {
	t     *testing.T
	now   time.Time
	store *vault.MemStore
	sched *spySched
	alarm *fakeAlarm
	svc   *engine.Service
}

func newFixture(t *testing.T, at string) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		now:   localTime(t, at),
		store: vault.NewMemStore(),
		alarm: &fakeAlarm{},
	}

	clock := func() time.Time { return f.now }

	f.sched = &spySched{Memory: notify.NewMemoryAt(clock)}
	f.svc = engine.New(f.store, f.sched, engine.Options{Alarm: f.alarm, Now: clock})

	return f
}

func (f *fixture) advanceClock(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) reconcile() {
	f.t.Helper()

	if err := f.svc.Reconcile(context.Background()); err != nil {
		f.t.Fatalf("reconcile: %v", err)
	}
}

func (f *fixture) scheduled() []notify.Scheduled {
	f.t.Helper()

	entries, err := f.sched.Scheduled()
	if err != nil {
		f.t.Fatalf("scheduled: %v", err)
	}

	return entries
}

func (f *fixture) presented() []notify.Presented {
	f.t.Helper()

	entries, err := f.sched.Presented()
	if err != nil {
		f.t.Fatalf("presented: %v", err)
	}

	return entries
}

func (f *fixture) documentFields(handle string) map[string]string {
	f.t.Helper()

	text, ok := f.store.Text(handle)
	if !ok {
		f.t.Fatalf("document %s missing", handle)
	}

	rec, hasReminder := reminder.FromDocument(handle, vault.DocumentName(f.store, handle), text)

	fields := map[string]string{}
	if hasReminder {
		fields[reminder.KeyDatetime] = rec.TimeString()
		fields[reminder.KeyRecurrent] = rec.Rule
		fields[reminder.KeyAlarm] = strconv.FormatBool(rec.Alarm)
		fields[reminder.KeyPersistent] = strconv.Itoa(rec.Persistent)
	}

	return fields
}

// doc builds a reminder document from frontmatter lines.
func doc(lines ...string) string {
	all := append([]string{"---"}, lines...)
	all = append(all, "---", "Body text.")

	return strings.Join(all, "\n")
}

func localTime(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := reminder.ParseTime(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}

	return parsed
}
