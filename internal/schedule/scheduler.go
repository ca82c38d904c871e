package schedule

import (
	"sync"
	"time"
)

// Handle identifies one scheduled callback.
type Handle any

type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// TimeScheduler runs callbacks on their own goroutine via time.AfterFunc.
type TimeScheduler struct{}

func (TimeScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return time.AfterFunc(delay, fn)
}

func (TimeScheduler) Cancel(h Handle) {
	if t, ok := h.(*time.Timer); ok {
		t.Stop()
	}
}

// Repeater runs fn every interval on a Scheduler until stopped. Each run is
// scheduled only after the previous one returned.
type Repeater struct {
	sched    Scheduler
	interval time.Duration
	fn       func()

	mu     sync.Mutex
	timer  Timer
	handle Handle
}

func NewRepeater(s Scheduler, interval time.Duration, fn func()) *Repeater {
	return &Repeater{sched: s, interval: interval, fn: fn}
}

func (r *Repeater) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer.Enabled() {
		return
	}
	r.scheduleLocked(r.timer.Start())
}

func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timer.Stop()
	if r.handle != nil {
		r.sched.Cancel(r.handle)
		r.handle = nil
	}
}

func (r *Repeater) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer.State()
}

func (r *Repeater) scheduleLocked(gen uint64) {
	r.handle = r.sched.Schedule(r.interval, func() { r.tick(gen) })
}

func (r *Repeater) tick(gen uint64) {
	r.mu.Lock()
	ok := r.timer.Fire(gen)
	if ok {
		r.handle = nil
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	r.fn()

	r.mu.Lock()
	defer r.mu.Unlock()
	if next, ok := r.timer.Rearm(); ok {
		r.scheduleLocked(next)
	}
}
