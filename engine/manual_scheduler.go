package engine

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// ManualScheduler is a deterministic single-threaded Scheduler for tests
// Time only moves on Advance; due callbacks fire in timestamp order, ties in creation order
type ManualScheduler struct {
	clock  *clockwork.FakeClock
	tasks  map[Handle]*manualTask
	nextID Handle
}

type manualTask struct {
	interval time.Duration
	due      time.Time
	fn       func()
}

// NewManualScheduler creates a scheduler whose clock starts at start
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		clock: clockwork.NewFakeClockAt(start),
		tasks: make(map[Handle]*manualTask),
	}
}

// Now returns the current fake time
func (m *ManualScheduler) Now() time.Time {
	return m.clock.Now()
}

// Clock exposes the underlying fake clock
func (m *ManualScheduler) Clock() *clockwork.FakeClock {
	return m.clock
}

// ScheduleRepeating registers fn to run every interval
func (m *ManualScheduler) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		return 0
	}
	m.nextID++
	m.tasks[m.nextID] = &manualTask{
		interval: interval,
		due:      m.clock.Now().Add(interval),
		fn:       fn,
	}
	return m.nextID
}

// Cancel removes the timer for h
func (m *ManualScheduler) Cancel(h Handle) {
	delete(m.tasks, h)
}

// Pending returns the number of live timers
func (m *ManualScheduler) Pending() int {
	return len(m.tasks)
}

// Advance moves time forward by d, firing every callback that falls due on the way
func (m *ManualScheduler) Advance(d time.Duration) {
	m.AdvanceTo(m.clock.Now().Add(d))
}

// AdvanceTo moves time forward to target; a target in the past is a no-op
func (m *ManualScheduler) AdvanceTo(target time.Time) {
	for {
		task := m.nextDue(target)
		if task == nil {
			break
		}
		if gap := task.due.Sub(m.clock.Now()); gap > 0 {
			m.clock.Advance(gap)
		}
		task.due = task.due.Add(task.interval)
		task.fn()
	}

	if gap := target.Sub(m.clock.Now()); gap > 0 {
		m.clock.Advance(gap)
	}
}

// nextDue picks the earliest task due at or before target
func (m *ManualScheduler) nextDue(target time.Time) *manualTask {
	var (
		best   *manualTask
		bestID Handle
	)
	for h, task := range m.tasks {
		if task.due.After(target) {
			continue
		}
		if best == nil || task.due.Before(best.due) || (task.due.Equal(best.due) && h < bestID) {
			best, bestID = task, h
		}
	}
	return best
}
