package notify

import (
	"slices"
	"strconv"
	"sync"
	"time"
)

// Memory is the in-process [Scheduler]. The daemon owns its notification
// state for the lifetime of the process; nothing is persisted, because the
// reconciler rebuilds the schedule from the vault on every pass anyway.
//
// Scheduled entries become presented when [Memory.Deliver] observes their
// trigger time pass; the daemon loop calls it on every tick. A delivery
// callback, if set, is invoked outside the lock for each fired
// notification.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	nextID    int
	scheduled map[string]Scheduled
	presented map[string]Presented
	now       func() time.Time

	// OnDeliver, if non-nil, is called for each notification the moment
	// it fires. Set before first use.
	OnDeliver func(Presented)
}

// NewMemory returns an empty in-process scheduler.
func NewMemory() *Memory {
	return &Memory{
		scheduled: make(map[string]Scheduled),
		presented: make(map[string]Presented),
		now:       time.Now,
	}
}

// NewMemoryAt returns a scheduler with an injected clock, for tests.
func NewMemoryAt(now func() time.Time) *Memory {
	m := NewMemory()
	m.now = now

	return m
}

func (m *Memory) ScheduleAt(content Content, trigger time.Time, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := strconv.Itoa(m.nextID)

	m.scheduled[id] = Scheduled{ID: id, Content: content, Trigger: trigger}

	return id, nil
}

func (m *Memory) ScheduleNow(content Content, channel string) (string, error) {
	return m.ScheduleAt(content, m.now().Add(ImmediateDelay), channel)
}

func (m *Memory) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.scheduled, id)

	return nil
}

func (m *Memory) Scheduled() ([]Scheduled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Scheduled, 0, len(m.scheduled))
	for _, entry := range m.scheduled {
		out = append(out, entry)
	}

	slices.SortFunc(out, func(a, b Scheduled) int { return a.Trigger.Compare(b.Trigger) })

	return out, nil
}

func (m *Memory) Presented() ([]Presented, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Presented, 0, len(m.presented))
	for _, entry := range m.presented {
		out = append(out, entry)
	}

	slices.SortFunc(out, func(a, b Presented) int { return a.OriginalTrigger.Compare(b.OriginalTrigger) })

	return out, nil
}

func (m *Memory) Dismiss(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.presented, id)

	return nil
}

// Deliver moves every scheduled notification whose trigger time has passed
// into the presented set and invokes the delivery callback for each.
// Returns the notifications fired on this call.
func (m *Memory) Deliver() []Presented {
	now := m.now()

	m.mu.Lock()

	var fired []Presented

	for id, entry := range m.scheduled {
		if entry.Trigger.After(now) {
			continue
		}

		delete(m.scheduled, id)

		p := Presented{ID: id, Content: entry.Content, OriginalTrigger: entry.Trigger}
		m.presented[id] = p
		fired = append(fired, p)
	}

	callback := m.OnDeliver

	m.mu.Unlock()

	if callback != nil {
		for _, p := range fired {
			callback(p)
		}
	}

	slices.SortFunc(fired, func(a, b Presented) int { return a.OriginalTrigger.Compare(b.OriginalTrigger) })

	return fired
}
