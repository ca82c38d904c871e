package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/tcpview/tcpview/pkg/model"
)

// returns the column index at x pixels, or -1 if not found.
func (m *MainModel) getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

// handleHeaderClick sorts by the clicked column. The leading change column
// is not sortable.
func (m *MainModel) handleHeaderClick(x int) {
	colIdx := m.getColumnAtX(x, m.table.Columns())
	if colIdx < 1 {
		return
	}
	m.toggleSort(model.Column(colIdx - 1))
}
