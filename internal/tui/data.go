package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/tcpview/tcpview/internal/output"
	"github.com/tcpview/tcpview/internal/proc"
	"github.com/tcpview/tcpview/pkg/model"
)

type snapshotMsg struct {
	snap model.Snapshot
}

type refreshTickMsg struct{ gen uint64 }

type purgeTickMsg struct{ gen uint64 }

// poll builds a snapshot off the event loop.
func (m MainModel) poll() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		return snapshotMsg{snap: src.Build(context.Background())}
	}
}

func (m MainModel) refreshTick(gen uint64) tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}

func (m MainModel) purgeTick(gen uint64) tea.Cmd {
	return tea.Tick(m.purgeAfter, func(time.Time) tea.Msg {
		return purgeTickMsg{gen: gen}
	})
}

// applySnapshot folds a finished poll into the session and schedules the
// follow-up purge and, for timer driven polls, the next refresh.
func (m *MainModel) applySnapshot(snap model.Snapshot) tea.Cmd {
	auto := m.pollIsAuto
	m.polling = false
	m.pollIsAuto = false

	m.session.Apply(snap)
	m.syncTable()
	if snap.Err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", snap.Err)
	}

	cmds := []tea.Cmd{m.purgeTick(m.purge.Start())}
	if auto {
		if gen, ok := m.refresh.Rearm(); ok {
			cmds = append(cmds, m.refreshTick(gen))
		}
	}
	return tea.Batch(cmds...)
}

// startPoll begins a poll unless one is already running. A timer driven
// request that finds a poll in flight adopts it.
func (m *MainModel) startPoll(auto bool) tea.Cmd {
	if m.polling {
		if auto {
			m.pollIsAuto = true
		}
		return nil
	}
	m.polling = true
	m.pollIsAuto = auto
	return m.poll()
}

// syncTable re-renders the table from the session, keeping the cursor on the
// same connection when it is still shown.
func (m *MainModel) syncTable() {
	var current *model.DisplayRow
	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.view.Rows) {
		r := m.view.Rows[idx]
		current = &r
	}

	m.view = m.session.View()

	existing := m.table.Columns()
	cols := m.getColumns()
	for i := range existing {
		if i < len(cols) {
			cols[i].Width = existing[i].Width
		}
	}
	m.table.SetColumns(cols)

	rows := make([]table.Row, 0, len(m.view.Rows))
	for _, r := range m.view.Rows {
		rows = append(rows, tableRow(r))
	}
	m.table.SetRows(rows)

	newIdx := 0
	if current != nil {
		for i, r := range m.view.Rows {
			if sameConnection(r, *current) {
				newIdx = i
				break
			}
		}
	}
	if len(rows) > 0 {
		m.table.SetCursor(newIdx)
	}
}

func sameConnection(a, b model.DisplayRow) bool {
	return a.Row.Key() == b.Row.Key() && a.Row.PID == b.Row.PID && a.Row.RemoteIP == b.Row.RemoteIP && a.Row.RemotePort == b.Row.RemotePort
}

var classSigils = map[model.ChangeClass]string{
	model.Added:   "+",
	model.Changed: "~",
	model.Removed: "-",
}

func tableRow(r model.DisplayRow) table.Row {
	row := make(table.Row, 0, model.NumColumns+1)
	sigil := classSigils[r.Class]
	if sigil == "" {
		sigil = " "
	}
	row = append(row, sigil)
	for _, c := range r.Cells() {
		row = append(row, output.CleanText(c))
	}
	return row
}

var columnWidths = [model.NumColumns]int{
	model.ColName:       18,
	model.ColPID:        7,
	model.ColLocalIP:    16,
	model.ColLocalPort:  11,
	model.ColRemoteIP:   16,
	model.ColRemotePort: 12,
	model.ColHost:       24,
	model.ColStatus:     12,
	model.ColFamily:     9,
	model.ColType:       12,
}

func baseColumns() []table.Column {
	cols := []table.Column{{Title: " ", Width: 1}}
	for c := model.Column(0); c < model.NumColumns; c++ {
		cols = append(cols, table.Column{Title: c.Title(), Width: columnWidths[c]})
	}
	return cols
}

// getColumns is baseColumns with the sort arrow on the active column.
func (m *MainModel) getColumns() []table.Column {
	cols := baseColumns()
	st := m.session.Sort()
	for c := model.Column(0); c < model.NumColumns; c++ {
		cols[int(c)+1].Title += st.Indicator(c)
	}
	return cols
}

// highlightRows colors each unselected table line by its change class, read
// from the sigil column right after the cell padding. The selected line
// already carries the selection style and is left alone.
func highlightRows(view string) string {
	lines := strings.Split(view, "\n")
	for i, line := range lines {
		if len(line) < 2 || strings.Contains(line, "\x1b") {
			continue
		}
		switch line[1] {
		case '+':
			lines[i] = addedStyle.Render(line)
		case '~':
			lines[i] = changedStyle.Render(line)
		case '-':
			lines[i] = removedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *MainModel) selectedRow() (model.DisplayRow, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.view.Rows) {
		return model.DisplayRow{}, false
	}
	return m.view.Rows[idx], true
}

func (m *MainModel) openDetail() {
	r, ok := m.selectedRow()
	if !ok {
		return
	}
	m.detail = &r
	m.state = stateDetail
	m.viewport.GotoTop()
	m.updateDetailViewport()
}

func (m *MainModel) updateDetailViewport() {
	if m.detail == nil {
		return
	}
	content := detailContent(*m.detail, m.view.Rows)
	if m.viewport.Width > 0 {
		content = wrap.String(content, m.viewport.Width)
	}
	m.viewport.SetContent(content)
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#af87ff")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)

func detailContent(d model.DisplayRow, all []model.DisplayRow) string {
	r := d.Row
	var b strings.Builder

	field := func(label, value string) {
		if value == "" {
			value = dimStyle.Render("n/a")
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}

	name := output.CleanText(r.ProcessName)
	if r.PID > 0 {
		name = fmt.Sprintf("%s (pid %d)", name, r.PID)
	}
	field("Process", name)
	field("Local", output.Endpoint(r.LocalIP, r.LocalPort))
	if r.RemoteIP != "" {
		field("Remote", output.Endpoint(r.RemoteIP, r.RemotePort))
	} else {
		field("Remote", "")
	}
	field("Hostname", output.CleanText(r.Hostname))
	field("Status", r.Status)
	field("Family", r.Family)
	field("Type", r.Type)
	field("Change", d.Class.String())

	explanation, workaround := proc.ExplainState(r.Status)
	fmt.Fprintf(&b, "\n%s\n  %s\n", labelStyle.Render("State:"), explanation)
	if workaround != "" {
		fmt.Fprintf(&b, "  %s %s\n", warnStyle.Render("Hint:"), workaround)
	}

	if r.PID > 0 {
		var siblings []model.DisplayRow
		for _, o := range all {
			if o.Row.PID == r.PID {
				siblings = append(siblings, o)
			}
		}
		fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Sockets of this process:"))
		output.PrintTree(&b, siblings, true)
	}
	return b.String()
}
