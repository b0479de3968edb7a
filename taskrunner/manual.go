package taskrunner

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Runner driven by an explicit virtual clock. Nothing runs until
// RunUntilIdle or FastForward is called, which makes it suitable for tests.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []manualTask
}

type manualTask struct {
	due  time.Duration
	seq  uint64
	task func()
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) PostTask(task func()) { m.PostDelayedTask(task, 0) }

func (m *Manual) PostDelayedTask(task func(), delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.tasks = append(m.tasks, manualTask{due: m.now + delay, seq: m.seq, task: task})
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of tasks that have not run yet, delayed or not.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// NextDelay reports how far the clock must advance for the next task to
// become due. ok is false when nothing is pending.
func (m *Manual) NextDelay() (d time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return 0, false
	}
	m.sortLocked()
	if d = m.tasks[0].due - m.now; d < 0 {
		d = 0
	}
	return d, true
}

// RunUntilIdle runs every task that is due at the current virtual time,
// including tasks posted by those tasks.
func (m *Manual) RunUntilIdle() {
	for {
		task, ok := m.popDue()
		if !ok {
			return
		}
		task()
	}
}

// FastForward advances the clock by d, running tasks as they become due.
func (m *Manual) FastForward(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.RunUntilIdle()
		m.mu.Lock()
		m.sortLocked()
		if len(m.tasks) == 0 || m.tasks[0].due > target {
			m.now = target
			m.mu.Unlock()
			m.RunUntilIdle()
			return
		}
		m.now = m.tasks[0].due
		m.mu.Unlock()
	}
}

// RunAll repeatedly advances to the next due task until nothing is pending.
// Tasks that keep rescheduling themselves make this loop forever.
func (m *Manual) RunAll() {
	for {
		m.RunUntilIdle()
		d, ok := m.NextDelay()
		if !ok {
			return
		}
		m.FastForward(d)
	}
}

func (m *Manual) popDue() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortLocked()
	if len(m.tasks) == 0 || m.tasks[0].due > m.now {
		return nil, false
	}
	t := m.tasks[0]
	m.tasks = m.tasks[1:]
	return t.task, true
}

func (m *Manual) sortLocked() {
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
}
