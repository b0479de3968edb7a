package taskrunner

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestManualOrdering(t *testing.T) {
	m := NewManual()
	var got []string
	m.PostDelayedTask(func() { got = append(got, "late") }, 100*time.Millisecond)
	m.PostTask(func() {
		got = append(got, "first")
		m.PostTask(func() { got = append(got, "nested") })
	})
	m.PostTask(func() { got = append(got, "second") })

	m.RunUntilIdle()
	if want := []string{"first", "second", "nested"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after RunUntilIdle got %v, want %v", got, want)
	}
	if m.Pending() != 1 {
		t.Fatalf("expected delayed task pending, got %d", m.Pending())
	}
	m.FastForward(99 * time.Millisecond)
	if len(got) != 3 {
		t.Fatalf("delayed task ran early: %v", got)
	}
	m.FastForward(time.Millisecond)
	if got[len(got)-1] != "late" {
		t.Fatalf("delayed task did not run: %v", got)
	}
	if m.Now() != 100*time.Millisecond {
		t.Fatalf("unexpected clock %v", m.Now())
	}
}

func TestManualRunAll(t *testing.T) {
	m := NewManual()
	count := 0
	var step func()
	step = func() {
		count++
		if count < 5 {
			m.PostDelayedTask(step, 10*time.Millisecond)
		}
	}
	m.PostTask(step)
	m.RunAll()
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
	if m.Now() != 40*time.Millisecond {
		t.Fatalf("clock = %v, want 40ms", m.Now())
	}
}

func TestSequenceRunsInOrder(t *testing.T) {
	s := NewSequence()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		s.PostTask(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	s.PostDelayedTask(func() { close(done) }, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("delayed task never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order: %v", got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("got %d tasks, want 10", len(got))
	}
}

func TestSequenceStopDropsDelayed(t *testing.T) {
	s := NewSequence()
	ran := make(chan struct{}, 1)
	s.PostDelayedTask(func() { ran <- struct{}{} }, 20*time.Millisecond)
	s.Stop()
	go s.Run(context.Background())
	select {
	case <-ran:
		t.Fatalf("task ran after Stop")
	case <-time.After(60 * time.Millisecond):
	}
}
