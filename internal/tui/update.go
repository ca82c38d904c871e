package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tcpview/tcpview/pkg/model"
)

// sortKeys maps the number row onto columns in display order.
var sortKeys = map[string]model.Column{
	"1": model.ColName,
	"2": model.ColPID,
	"3": model.ColLocalIP,
	"4": model.ColLocalPort,
	"5": model.ColRemoteIP,
	"6": model.ColRemotePort,
	"7": model.ColHost,
	"8": model.ColStatus,
	"9": model.ColFamily,
	"0": model.ColType,
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		cmd := m.applySnapshot(msg.snap)
		m.updateDetailViewport()
		return m, cmd

	case refreshTickMsg:
		if !m.refresh.Fire(msg.gen) {
			return m, nil
		}
		return m, m.startPoll(true)

	case purgeTickMsg:
		if m.purge.Fire(msg.gen) {
			m.session.Purge()
			m.syncTable()
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		m.statusMsg = "" // clear any transient error on interaction
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.state == stateDetail {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}

	return m, nil
}

func (m MainModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		if msg.String() == "enter" || msg.String() == "esc" {
			m.input.Blur()
			return m, nil
		}
		var inputCmd tea.Cmd
		m.input, inputCmd = m.input.Update(msg)
		if m.input.Value() != m.session.Query() {
			m.session.SetFilter(m.input.Value())
			m.syncTable()
			m.table.SetCursor(0)
		}
		return m, inputCmd
	}

	if col, ok := sortKeys[msg.String()]; ok {
		m.toggleSort(col)
		return m, nil
	}

	switch msg.String() {
	case "/":
		m.input.Focus()
		return m, textinput.Blink
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.openDetail()
		return m, nil
	case "r", "R":
		if m.polling {
			m.statusMsg = "Refresh already running"
			return m, nil
		}
		return m, m.startPoll(false)
	case "a", "A":
		gen, started := m.refresh.Toggle()
		if !started {
			m.statusMsg = "Auto-refresh off"
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Auto-refresh every %v", m.interval)
		return m, m.refreshTick(gen)
	case "x", "X":
		if r, ok := m.selectedRow(); ok && r.Row.PID > 0 {
			m.openDetail()
			m.actionMenuOpen = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m MainModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pid := 0
	if m.detail != nil {
		pid = m.detail.Row.PID
	}

	// confirmation prompt
	if m.pendingAction != actionNone {
		switch msg.String() {
		case "y", "Y":
			action := m.pendingAction
			m.pendingAction = actionNone
			var execErr error
			switch action {
			case actionKill:
				execErr = killProcess(pid)
			case actionTerm:
				execErr = termProcess(pid)
			}
			if execErr != nil {
				m.statusMsg = fmt.Sprintf("Error: %v", execErr)
				return m, nil
			}
			m.state = stateList
			m.detail = nil
			m.statusMsg = fmt.Sprintf("Signal sent to PID %d", pid)
			return m, m.startPoll(false)
		case "n", "N", "esc":
			m.pendingAction = actionNone
		}
		return m, nil
	}

	// action menu
	if m.actionMenuOpen {
		switch msg.String() {
		case "k":
			m.actionMenuOpen = false
			m.pendingAction = actionKill
		case "t":
			m.actionMenuOpen = false
			m.pendingAction = actionTerm
		case "esc", "q":
			m.actionMenuOpen = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "q", "backspace":
		m.closeDetail()
		return m, nil
	case "x", "X":
		if pid > 0 {
			m.actionMenuOpen = true
		} else {
			m.statusMsg = "No owning process for this socket"
		}
		return m, nil
	case "r", "R":
		if m.polling {
			return m, nil
		}
		return m, m.startPoll(false)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *MainModel) closeDetail() {
	m.state = stateList
	m.detail = nil
	m.actionMenuOpen = false
	m.pendingAction = actionNone
}

func (m *MainModel) toggleSort(col model.Column) {
	m.session.ToggleSort(col)
	m.syncTable()
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = "" // clear any transient error on interaction
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	// Required for Windows: isClick is true only for real pointer presses (not scroll wheel).
	isWheel := msg.Button == tea.MouseButtonWheelUp ||
		msg.Button == tea.MouseButtonWheelDown ||
		msg.Button == tea.MouseButtonWheelLeft ||
		msg.Button == tea.MouseButtonWheelRight
	isClick := msg.Action == tea.MouseActionPress && !isWheel

	isDoubleClick := false
	if isClick {
		if time.Since(m.lastClickTime) < 500*time.Millisecond &&
			abs(m.lastClickX-msg.X) <= 2 && abs(m.lastClickY-msg.Y) <= 1 {
			isDoubleClick = true
		}
		m.lastClickTime = time.Now()
		m.lastClickX = msg.X
		m.lastClickY = msg.Y
	}

	// Title click returns to the list
	if msg.Y == 1 && isClick && msg.X >= 1 && msg.X <= 9 {
		m.closeDetail()
		return m, nil
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		detailMsg := msg
		detailMsg.Y -= 3
		m.viewport, cmd = m.viewport.Update(detailMsg)
		return m, cmd
	}

	// Clicking outside the input row blurs the filter box
	if isClick && msg.Y != 5 && m.input.Focused() {
		m.input.Blur()
	}
	if msg.Y == 5 && isClick {
		m.input.Focus()
		return m, textinput.Blink
	}

	if msg.Y < 7 {
		return m, nil
	}
	contentX := msg.X - 2
	if contentX < 0 {
		return m, nil
	}

	if isWheel {
		// Convert wheel to key so the table scrolls by one row
		// without jumping the cursor to the mouse Y position.
		var keyMsg tea.KeyMsg
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			keyMsg = tea.KeyMsg{Type: tea.KeyUp}
		case tea.MouseButtonWheelDown:
			keyMsg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}

	if !isClick {
		return m, nil
	}
	if msg.Y == 7 {
		m.handleHeaderClick(contentX)
		return m, nil
	}

	// Table lines start below the header and its border.
	if m.selectLine(msg.Y-7) && isDoubleClick {
		m.openDetail()
	}
	return m, nil
}

// selectLine moves the cursor to the row drawn on line y of the table view.
// The table does not expose its scroll offset, so the position is worked out
// relative to the line that carries the selection style.
func (m *MainModel) selectLine(y int) bool {
	lines := strings.Split(m.table.View(), "\n")
	if y < 2 || y >= len(lines) {
		return false
	}
	selectedLine := -1
	for i := 2; i < len(lines); i++ {
		if stripAnsi(lines[i]) != lines[i] {
			selectedLine = i
			break
		}
	}
	if selectedLine < 0 {
		return false
	}
	idx := m.table.Cursor() + (y - selectedLine)
	if idx < 0 || idx >= len(m.view.Rows) {
		return false
	}
	m.table.SetCursor(idx)
	return true
}

func (m *MainModel) resize(width, height int) {
	m.width = width
	m.height = height

	availableWidth := width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}

	listHeight := height - 11
	if listHeight < 5 {
		listHeight = 5
	}

	// Every cell is padded by one column on each side.
	fixed := 0
	cols := m.table.Columns()
	for i, c := range cols {
		fixed += 2
		if i != int(model.ColHost)+1 {
			fixed += c.Width
		}
	}
	hostWidth := availableWidth - fixed
	if hostWidth < 10 {
		hostWidth = 10
	}
	cols[int(model.ColHost)+1].Width = hostWidth
	m.table.SetColumns(cols)
	m.table.SetWidth(availableWidth)
	m.table.SetHeight(listHeight)

	vpHeight := height - 9
	if vpHeight < 0 {
		vpHeight = 0
	}
	m.viewport.Width = availableWidth - 2
	m.viewport.Height = vpHeight
	m.updateDetailViewport()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
