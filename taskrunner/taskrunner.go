// Package taskrunner provides the single logical sequence that owns the
// searchify scheduler's state. Every task posted to a Runner runs on that
// sequence, one at a time and in posting order; delayed tasks run once their
// delay has elapsed.
package taskrunner

import (
	"context"
	"sync"
	"time"
)

// Runner accepts work for a single sequence.
type Runner interface {
	PostTask(task func())
	PostDelayedTask(task func(), delay time.Duration)
}

// Sequence is a goroutine-backed Runner. Tasks may be posted from any
// goroutine; they execute on the goroutine that calls Run.
type Sequence struct {
	mu      sync.Mutex
	queue   []func()
	timers  map[*time.Timer]struct{}
	wake    chan struct{}
	stopped bool
}

// NewSequence returns a Sequence that executes nothing until Run is called.
func NewSequence() *Sequence {
	return &Sequence{
		timers: make(map[*time.Timer]struct{}),
		wake:   make(chan struct{}, 1),
	}
}

// PostTask appends task to the sequence. Tasks posted after Stop are dropped.
func (s *Sequence) PostTask(task func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, task)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// PostDelayedTask posts task once delay has elapsed.
func (s *Sequence) PostDelayedTask(task func(), delay time.Duration) {
	if delay <= 0 {
		s.PostTask(task)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()
		s.PostTask(task)
	})
	s.timers[timer] = struct{}{}
}

// Run executes posted tasks until ctx is cancelled or Stop is called.
// Run blocks; tasks execute on the calling goroutine.
func (s *Sequence) Run(ctx context.Context) {
	for {
		for {
			task, ok := s.next()
			if !ok {
				break
			}
			task()
		}
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-s.wake:
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return
			}
		}
	}
}

func (s *Sequence) next() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || len(s.queue) == 0 {
		return nil, false
	}
	task := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return task, true
}

// Stop discards pending and delayed tasks and makes Run return.
func (s *Sequence) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.queue = nil
	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}
