package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/tcpview/tcpview/internal/logging"
	"github.com/tcpview/tcpview/internal/schedule"
	"github.com/tcpview/tcpview/internal/sorting"
)

// Collector drives a Session from a Scheduler for the headless front ends.
// It is safe for concurrent use: HTTP handlers read while the poll writes.
type Collector struct {
	session    *Session
	sched      schedule.Scheduler
	purgeAfter time.Duration
	log        *logging.Logger

	// Notify, when set, receives the view produced by every refresh. It is
	// called without the lock held.
	Notify func(DisplaySet)

	refreshMu sync.Mutex

	mu          sync.Mutex
	purge       schedule.Timer
	purgeHandle schedule.Handle
	poll        *schedule.Repeater
}

func NewCollector(session *Session, sched schedule.Scheduler, interval, purgeAfter time.Duration, log *logging.Logger) *Collector {
	c := &Collector{
		session:    session,
		sched:      sched,
		purgeAfter: purgeAfter,
		log:        log,
	}
	c.poll = schedule.NewRepeater(sched, interval, func() { c.Refresh(context.Background()) })
	return c
}

// Start refreshes once and then keeps polling until Stop.
func (c *Collector) Start(ctx context.Context) {
	c.Refresh(ctx)
	c.poll.Start()
}

// Stop cancels polling and any pending purge. A refresh already running
// completes.
func (c *Collector) Stop() {
	c.poll.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purge.Stop()
	if c.purgeHandle != nil {
		c.sched.Cancel(c.purgeHandle)
		c.purgeHandle = nil
	}
}

// Refresh polls the source now. Concurrent calls are serialized so snapshots
// are applied in the order they were taken.
func (c *Collector) Refresh(ctx context.Context) DisplaySet {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	snap := c.session.src.Build(ctx)

	c.mu.Lock()
	c.session.Apply(snap)
	view := c.session.View()
	c.schedulePurgeLocked()
	c.mu.Unlock()

	if snap.Err != nil {
		c.log.Warn("refresh failed: ", snap.Err)
	} else {
		c.log.Debugln("refreshed", view.Counts.Total, "rows,", view.Counts.Added, "added,", view.Counts.Changed, "changed,", view.Counts.Removed, "removed")
	}
	if c.Notify != nil {
		c.Notify(view)
	}
	return view
}

func (c *Collector) schedulePurgeLocked() {
	if c.purgeHandle != nil {
		c.sched.Cancel(c.purgeHandle)
	}
	gen := c.purge.Start()
	c.purgeHandle = c.sched.Schedule(c.purgeAfter, func() { c.firePurge(gen) })
}

func (c *Collector) firePurge(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.purge.Fire(gen) {
		return
	}
	c.purgeHandle = nil
	c.session.Purge()
}

// View returns the session's view using its configured filter and sort.
func (c *Collector) View() DisplaySet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.View()
}

func (c *Collector) ViewWith(query string, st sorting.State) DisplaySet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ViewWith(query, st)
}
