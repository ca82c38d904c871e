// Package schedule models cancellable repeating timers.
//
// Timer is the state machine: Idle until first started, Scheduled while a
// tick is pending or the tick's work is in flight, Cancelled once stopped.
// Every (re)schedule issues a new generation; a tick carrying an older
// generation is stale and must be ignored. Work already running when Stop is
// called is not interrupted, it finds out at Rearm.
package schedule

type State int

const (
	Idle State = iota
	Scheduled
	Cancelled
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

type Timer struct {
	state   State
	gen     uint64
	pending bool
}

func (t *Timer) State() State { return t.state }

// Enabled reports whether the timer is Scheduled.
func (t *Timer) Enabled() bool { return t.state == Scheduled }

// Start moves the timer to Scheduled and returns the generation of the new tick.
func (t *Timer) Start() uint64 {
	t.state = Scheduled
	t.gen++
	t.pending = true
	return t.gen
}

// Stop cancels the pending tick, if any.
func (t *Timer) Stop() {
	if t.state == Idle {
		return
	}
	t.state = Cancelled
	t.gen++
	t.pending = false
}

// Fire consumes the tick with generation gen. It reports false for stale or
// cancelled ticks.
func (t *Timer) Fire(gen uint64) bool {
	if t.state != Scheduled || !t.pending || gen != t.gen {
		return false
	}
	t.pending = false
	return true
}

// Rearm schedules the next tick after fired work completes. It reports false
// if the timer was stopped meanwhile or a tick is already pending.
func (t *Timer) Rearm() (uint64, bool) {
	if t.state != Scheduled || t.pending {
		return 0, false
	}
	t.gen++
	t.pending = true
	return t.gen, true
}

// Toggle starts an idle or cancelled timer and stops a scheduled one. The
// returned generation is only meaningful when started is true.
func (t *Timer) Toggle() (gen uint64, started bool) {
	if t.state == Scheduled {
		t.Stop()
		return 0, false
	}
	return t.Start(), true
}
