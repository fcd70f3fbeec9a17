package room

import (
	"testing"
	"time"
)

func TestSchedulerExpire(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 1)
	s := newScheduler(func(fn func()) { fn() })

	s.Arm(20*time.Millisecond, nil, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestSchedulerCancelDiscardsFire(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 1)
	s := newScheduler(func(fn func()) { fn() })

	s.Arm(20*time.Millisecond, nil, func() { fired <- struct{}{} })
	s.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled timer must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerRearmSupersedes(t *testing.T) {
	t.Parallel()

	fired := make(chan string, 2)
	s := newScheduler(func(fn func()) { fn() })

	s.Arm(20*time.Millisecond, nil, func() { fired <- "first" })
	s.Arm(40*time.Millisecond, nil, func() { fired <- "second" })

	select {
	case who := <-fired:
		if who != "second" {
			t.Fatalf("stale epoch leaked a fire from %q", who)
		}
	case <-time.After(time.Second):
		t.Fatal("re-armed timer never fired")
	}
}

func TestSchedulerTicks(t *testing.T) {
	t.Parallel()

	ticks := make(chan int, 4)
	done := make(chan struct{}, 1)
	s := newScheduler(func(fn func()) { fn() })

	s.Arm(2*time.Second, func(remaining int) { ticks <- remaining }, func() { done <- struct{}{} })

	select {
	case remaining := <-ticks:
		if remaining != 1 {
			t.Errorf("first tick of a 2s timer leaves 1s, got %d", remaining)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no tick observed")
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timer never expired")
	}
}
