package room

import (
	"sync"
	"time"
)

func newScheduler(enqueue func(fn func())) *Scheduler {
	return &Scheduler{enqueue: enqueue}
}

// Scheduler owns the timers of one room. Every fire is handed back to the
// room as an ordinary queued request, so a timer never bypasses the
// single-writer ordering. Arming bumps an epoch; fires from a stale epoch
// are discarded when they reach the queue.
type Scheduler struct {
	enqueue func(fn func())

	mtx    sync.Mutex
	epoch  uint64
	stopCh chan struct{}
}

// Arm schedules onExpire after d, cancelling any previous schedule. If
// onTick is non-nil it fires every second with the remaining whole seconds.
func (s *Scheduler) Arm(d time.Duration, onTick func(remainingSec int), onExpire func()) {
	s.mtx.Lock()
	s.epoch++
	epoch := s.epoch
	if s.stopCh != nil {
		close(s.stopCh)
	}
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mtx.Unlock()

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()

		var tickC <-chan time.Time
		if onTick != nil {
			ticker := time.NewTicker(1 * time.Second)
			defer ticker.Stop()
			tickC = ticker.C
		}

		remaining := int(d / time.Second)
		for {
			select {
			case <-stop:
				return
			case <-tickC:
				remaining--
				left := remaining
				s.dispatch(epoch, func() { onTick(left) })
			case <-timer.C:
				s.dispatch(epoch, onExpire)
				return
			}
		}
	}()
}

func (s *Scheduler) Cancel() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.epoch++
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

func (s *Scheduler) dispatch(epoch uint64, fn func()) {
	s.enqueue(func() {
		s.mtx.Lock()
		current := s.epoch
		s.mtx.Unlock()
		if current != epoch {
			return
		}
		fn()
	})
}
