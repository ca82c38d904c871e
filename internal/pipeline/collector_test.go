package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tcpview/tcpview/internal/schedule"
	"github.com/tcpview/tcpview/internal/sorting"
	"github.com/tcpview/tcpview/pkg/model"
)

type manualScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	fns    []func()
}

func (m *manualScheduler) Schedule(d time.Duration, fn func()) schedule.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
	m.fns = append(m.fns, fn)
	return len(m.fns) - 1
}

func (m *manualScheduler) Cancel(schedule.Handle) {}

// fire runs the most recent callback scheduled with delay d.
func (m *manualScheduler) fire(t *testing.T, d time.Duration) {
	t.Helper()
	m.mu.Lock()
	var fn func()
	for i := len(m.fns) - 1; i >= 0; i-- {
		if m.delays[i] == d {
			fn = m.fns[i]
			break
		}
	}
	m.mu.Unlock()
	if fn == nil {
		t.Fatalf("nothing scheduled with delay %v", d)
	}
	fn()
}

const (
	pollEvery  = 5 * time.Second
	purgeAfter = 2 * time.Second
)

func TestCollectorPollAndPurge(t *testing.T) {
	q := &queue{snaps: []model.Snapshot{
		good(conn("sshd", 22, "LISTEN")),
		good(conn("sshd", 22, "LISTEN"), conn("redis", 6379, "LISTEN")),
	}}
	sched := &manualScheduler{}
	c := NewCollector(NewSession(q), sched, pollEvery, purgeAfter, nil)

	var notified []DisplaySet
	c.Notify = func(v DisplaySet) { notified = append(notified, v) }

	c.Start(context.Background())
	if len(notified) != 1 {
		t.Fatalf("Start notified %d times, want 1", len(notified))
	}

	sched.fire(t, pollEvery)
	view := c.View()
	if got, _ := classOf(view, 6379); got != model.Added {
		t.Fatalf("port 6379 class = %v, want added", got)
	}
	if len(notified) != 2 || notified[1].Counts.Added != 1 {
		t.Fatalf("notified = %+v", notified)
	}

	sched.fire(t, purgeAfter)
	if got, _ := classOf(c.View(), 6379); got != model.Unchanged {
		t.Fatalf("port 6379 class after purge = %v, want unchanged", got)
	}
	c.Stop()
}

func TestCollectorStalePurgeIgnored(t *testing.T) {
	q := &queue{snaps: []model.Snapshot{
		good(conn("sshd", 22, "LISTEN")),
		good(conn("redis", 6379, "LISTEN")),
		good(conn("redis", 6379, "LISTEN"), conn("nginx", 80, "LISTEN")),
	}}
	sched := &manualScheduler{}
	c := NewCollector(NewSession(q), sched, pollEvery, purgeAfter, nil)
	ctx := context.Background()

	c.Refresh(ctx)
	c.Refresh(ctx)
	stale := sched.fns[1]
	c.Refresh(ctx)

	stale()
	if !c.session.Pending() {
		t.Fatalf("purge from an earlier refresh cleared the latest changes")
	}
	sched.fire(t, purgeAfter)
	if c.session.Pending() {
		t.Fatalf("current purge did not clear highlighting")
	}
}

func TestCollectorViewWithLeavesSessionSettings(t *testing.T) {
	q := &queue{snaps: []model.Snapshot{good(conn("sshd", 22, "LISTEN"), conn("nginx", 80, "LISTEN"))}}
	s := NewSession(q)
	s.SetFilter("sshd")
	c := NewCollector(s, &manualScheduler{}, pollEvery, purgeAfter, nil)
	c.Refresh(context.Background())

	one := c.ViewWith("nginx", sorting.By(model.ColLocalPort, false))
	if len(one.Rows) != 1 || one.Rows[0].Row.ProcessName != "nginx" {
		t.Fatalf("ViewWith rows = %+v", one.Rows)
	}
	if v := c.View(); len(v.Rows) != 1 || v.Rows[0].Row.ProcessName != "sshd" {
		t.Fatalf("View rows = %+v, session filter was changed", v.Rows)
	}
}
