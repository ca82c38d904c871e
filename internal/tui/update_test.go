package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tcpview/tcpview/internal/sorting"
	"github.com/tcpview/tcpview/pkg/model"
)

type fixedSource struct {
	rows []model.ConnectionRow
}

func (f *fixedSource) Build(context.Context) model.Snapshot {
	return model.Snapshot{Rows: f.rows, Taken: time.Now()}
}

func conn(name string, pid, port int, status string) model.ConnectionRow {
	return model.ConnectionRow{ProcessName: name, PID: pid, LocalIP: "0.0.0.0", LocalPort: port, Status: status, Family: "AF_INET", Type: "SOCK_STREAM"}
}

func newModel(auto bool) (MainModel, *fixedSource) {
	src := &fixedSource{rows: []model.ConnectionRow{conn("sshd", 10, 22, "LISTEN"), conn("nginx", 20, 80, "LISTEN")}}
	m := InitialModel(Options{
		Source:      src,
		Interval:    time.Second,
		PurgeAfter:  time.Second,
		AutoRefresh: auto,
	})
	return m, src
}

func update(t *testing.T, m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(MainModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFirstSnapshotFillsTable(t *testing.T) {
	m, src := newModel(false)
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})
	if m.polling {
		t.Fatalf("polling still set after the snapshot arrived")
	}
	if got := len(m.table.Rows()); got != 2 {
		t.Fatalf("table has %d rows, want 2", got)
	}
	if m.view.Counts.Added != 0 {
		t.Fatalf("first snapshot highlighted rows: %+v", m.view.Counts)
	}
}

func TestAutoRefreshTicks(t *testing.T) {
	m, src := newModel(true)
	first := m.firstTick
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})

	m, cmd := update(t, m, refreshTickMsg{gen: first})
	if cmd == nil || !m.polling || !m.pollIsAuto {
		t.Fatalf("tick did not start an automatic poll")
	}
	m, _ = update(t, m, cmd())
	if m.polling {
		t.Fatalf("poll did not finish")
	}
	if m.refresh.State().String() != "scheduled" {
		t.Fatalf("timer state = %v after the poll, want scheduled", m.refresh.State())
	}

	// the consumed generation cannot fire twice
	if _, cmd := update(t, m, refreshTickMsg{gen: first}); cmd != nil {
		t.Fatalf("stale tick started a poll")
	}
}

func TestToggleOffDuringPollStopsRescheduling(t *testing.T) {
	m, src := newModel(true)
	first := m.firstTick
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})
	m, cmd := update(t, m, refreshTickMsg{gen: first})
	if cmd == nil {
		t.Fatalf("tick did not start a poll")
	}

	m, _ = update(t, m, key("a"))
	if m.refresh.Enabled() {
		t.Fatalf("auto-refresh still enabled after toggle")
	}
	m, _ = update(t, m, cmd())
	if m.refresh.Enabled() {
		t.Fatalf("completed poll re-armed a cancelled timer")
	}
}

func TestManualRefreshWhilePolling(t *testing.T) {
	m, _ := newModel(false)
	m, cmd := update(t, m, key("r"))
	if cmd != nil {
		t.Fatalf("second poll started while the first was in flight")
	}
	if !strings.Contains(m.statusMsg, "already running") {
		t.Fatalf("statusMsg = %q", m.statusMsg)
	}
}

func TestSortKeys(t *testing.T) {
	m, src := newModel(false)
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})

	m, _ = update(t, m, key("4"))
	m, _ = update(t, m, key("4"))
	if m.view.Sort != sorting.By(model.ColLocalPort, true) {
		t.Fatalf("sort = %+v", m.view.Sort)
	}
	if m.view.Rows[0].Row.LocalPort != 80 {
		t.Fatalf("first row port = %d, want 80", m.view.Rows[0].Row.LocalPort)
	}
	title := m.table.Columns()[int(model.ColLocalPort)+1].Title
	if !strings.HasSuffix(title, "↓") {
		t.Fatalf("header title = %q, want a down arrow", title)
	}
}

func TestFilterInput(t *testing.T) {
	m, src := newModel(false)
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})

	m, _ = update(t, m, key("/"))
	if !m.input.Focused() {
		t.Fatalf("/ did not focus the filter")
	}
	for _, r := range "nginx bad:x" {
		m, _ = update(t, m, key(string(r)))
	}
	if len(m.view.Rows) != 1 || m.view.Rows[0].Row.ProcessName != "nginx" {
		t.Fatalf("filtered rows = %+v", m.view.Rows)
	}
	if len(m.view.Ignored) != 1 || m.view.Ignored[0] != "bad:x" {
		t.Fatalf("ignored = %v", m.view.Ignored)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Focused() {
		t.Fatalf("enter did not leave the filter box")
	}
}

func TestPurgeTick(t *testing.T) {
	m, src := newModel(false)
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})

	src.rows = append(src.rows, conn("redis", 30, 6379, "LISTEN"))
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})
	if m.view.Counts.Added != 1 {
		t.Fatalf("counts = %+v, want one added", m.view.Counts)
	}
	stale := m.purge.Start() - 1
	m, _ = update(t, m, purgeTickMsg{gen: stale})
	if m.view.Counts.Added != 1 {
		t.Fatalf("stale purge cleared highlighting")
	}
	// The purge generation handed out above replaced the one from the refresh.
	m, _ = update(t, m, purgeTickMsg{gen: stale + 1})
	if m.view.Counts.Added != 0 {
		t.Fatalf("purge left highlighting: %+v", m.view.Counts)
	}
}

func TestDetailAndActionMenu(t *testing.T) {
	m, src := newModel(false)
	m, _ = update(t, m, snapshotMsg{snap: src.Build(context.Background())})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateDetail || m.detail == nil || m.detail.Row.ProcessName != "sshd" {
		t.Fatalf("enter did not open the detail of the first row")
	}
	m, _ = update(t, m, key("x"))
	if !m.actionMenuOpen {
		t.Fatalf("x did not open the action menu")
	}
	m, _ = update(t, m, key("t"))
	if m.pendingAction != actionTerm {
		t.Fatalf("pendingAction = %v, want term", m.pendingAction)
	}
	m, _ = update(t, m, key("n"))
	if m.pendingAction != actionNone || m.state != stateDetail {
		t.Fatalf("declining did not cancel the action")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateList {
		t.Fatalf("esc did not return to the list")
	}
}

func TestHighlightRows(t *testing.T) {
	view := " + sshd\n   nginx\n ~ redis"
	got := highlightRows(view)
	lines := strings.Split(got, "\n")
	if lines[1] != "   nginx" {
		t.Fatalf("unchanged line was restyled: %q", lines[1])
	}
	if stripAnsi(lines[0]) != " + sshd" || stripAnsi(lines[2]) != " ~ redis" {
		t.Fatalf("highlighted lines lost their text: %q", got)
	}
}

func TestDetailContent(t *testing.T) {
	rows := []model.DisplayRow{
		{Row: conn("sshd", 10, 22, "TIME_WAIT")},
		{Row: conn("sshd", 10, 2222, "LISTEN")},
	}
	got := stripAnsi(detailContent(rows[0], rows))
	for _, want := range []string{"sshd (pid 10)", "0.0.0.0:22", "Hint:", "0.0.0.0:2222 LISTEN"} {
		if !strings.Contains(got, want) {
			t.Fatalf("detailContent missing %q:\n%s", want, got)
		}
	}
}
