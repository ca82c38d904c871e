package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tcpview/tcpview/internal/sorting"
	"github.com/tcpview/tcpview/pkg/model"
)

type queue struct {
	snaps []model.Snapshot
}

func (q *queue) Build(context.Context) model.Snapshot {
	s := q.snaps[0]
	q.snaps = q.snaps[1:]
	return s
}

func conn(name string, port int, status string) model.ConnectionRow {
	return model.ConnectionRow{ProcessName: name, LocalIP: "0.0.0.0", LocalPort: port, Status: status, Family: "AF_INET", Type: "SOCK_STREAM"}
}

func good(rows ...model.ConnectionRow) model.Snapshot {
	return model.Snapshot{Rows: rows, Taken: time.Unix(1700000000, 0)}
}

func failed() model.Snapshot {
	err := errors.New("boom")
	return model.Snapshot{Rows: []model.ConnectionRow{{ProcessName: "Error", Status: err.Error()}}, Err: err}
}

func classOf(view DisplaySet, port int) (model.ChangeClass, bool) {
	for _, r := range view.Rows {
		if r.Row.LocalPort == port {
			return r.Class, true
		}
	}
	return 0, false
}

func TestSessionRefreshSequence(t *testing.T) {
	q := &queue{snaps: []model.Snapshot{
		good(conn("sshd", 22, "LISTEN"), conn("nginx", 80, "LISTEN")),
		good(conn("sshd", 22, "LISTEN"), conn("nginx", 80, "CLOSE_WAIT"), conn("redis", 6379, "LISTEN")),
	}}
	s := NewSession(q)
	ctx := context.Background()

	s.Refresh(ctx)
	if s.Pending() {
		t.Fatalf("first refresh highlighted rows: %+v", s.View().Rows)
	}

	s.Refresh(ctx)
	view := s.View()
	for port, want := range map[int]model.ChangeClass{22: model.Unchanged, 80: model.Changed, 6379: model.Added} {
		if got, _ := classOf(view, port); got != want {
			t.Fatalf("port %d class = %v, want %v", port, got, want)
		}
	}
	if view.Counts.Total != 3 || view.Counts.Added != 1 || view.Counts.Changed != 1 {
		t.Fatalf("counts = %+v", view.Counts)
	}

	s.Purge()
	if s.Pending() {
		t.Fatalf("Purge left highlighting: %+v", s.View().Rows)
	}
}

func TestSessionTombstoneAndPurge(t *testing.T) {
	s := NewSession(nil)
	s.Apply(good(conn("sshd", 22, "LISTEN"), conn("nginx", 80, "LISTEN")))
	s.Apply(good(conn("sshd", 22, "LISTEN")))

	view := s.View()
	if got, ok := classOf(view, 80); !ok || got != model.Removed {
		t.Fatalf("port 80 class = %v (present %v), want removed", got, ok)
	}
	s.Purge()
	if _, ok := classOf(s.View(), 80); ok {
		t.Fatalf("tombstone survived Purge")
	}
}

func TestSessionErrorKeepsBaseline(t *testing.T) {
	s := NewSession(nil)
	s.Apply(good(conn("sshd", 22, "LISTEN")))
	s.Apply(failed())

	view := s.View()
	if view.Err == nil || len(view.Rows) != 1 || view.Rows[0].Row.ProcessName != "Error" {
		t.Fatalf("error view = %+v", view)
	}
	if view.Rows[0].Class != model.Unchanged {
		t.Fatalf("error row class = %v, want unchanged", view.Rows[0].Class)
	}

	s.Apply(good(conn("sshd", 22, "LISTEN"), conn("redis", 6379, "LISTEN")))
	view = s.View()
	if view.Err != nil {
		t.Fatalf("Err = %v after a good snapshot", view.Err)
	}
	if got, _ := classOf(view, 22); got != model.Unchanged {
		t.Fatalf("port 22 class = %v, want unchanged against the baseline", got)
	}
	if got, _ := classOf(view, 6379); got != model.Added {
		t.Fatalf("port 6379 class = %v, want added", got)
	}
}

func TestSessionFilterAndSort(t *testing.T) {
	s := NewSession(nil)
	s.Apply(good(conn("sshd", 22, "LISTEN"), conn("nginx", 80, "ESTABLISHED"), conn("nginx", 8080, "LISTEN")))

	ignored := s.SetFilter("status:listen bogus:1")
	if len(ignored) != 1 || ignored[0] != "bogus:1" {
		t.Fatalf("ignored = %v, want [bogus:1]", ignored)
	}
	s.ToggleSort(model.ColLocalPort)
	s.ToggleSort(model.ColLocalPort)

	view := s.View()
	if len(view.Rows) != 2 || view.Rows[0].Row.LocalPort != 8080 || view.Rows[1].Row.LocalPort != 22 {
		t.Fatalf("rows = %+v, want 8080 then 22", view.Rows)
	}
	if view.Sort != sorting.By(model.ColLocalPort, true) {
		t.Fatalf("sort = %+v", view.Sort)
	}
	if view.Counts.Total != 3 {
		t.Fatalf("counts should cover unfiltered rows, got %+v", view.Counts)
	}
	if view.Filter != "status:listen bogus:1" {
		t.Fatalf("filter = %q", view.Filter)
	}
}
