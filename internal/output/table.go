package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"
	"github.com/tcpview/tcpview/internal/pipeline"
	"github.com/tcpview/tcpview/pkg/model"
)

// maxCellWidth keeps long hostnames from blowing up the table.
const maxCellWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	classStyles = map[model.ChangeClass]lipgloss.Style{
		model.Added:   cellStyle.Foreground(lipgloss.Color("42")),
		model.Changed: cellStyle.Foreground(lipgloss.Color("214")),
		model.Removed: cellStyle.Foreground(lipgloss.Color("196")).Faint(true),
	}
)

// Headers returns the column titles with the sort arrow on the active column.
func Headers(set pipeline.DisplaySet) []string {
	headers := make([]string, model.NumColumns)
	for c := model.Column(0); c < model.NumColumns; c++ {
		headers[c] = c.Title() + set.Sort.Indicator(c)
	}
	return headers
}

// RenderTable writes set as a bordered table followed by a one-line summary.
func RenderTable(w io.Writer, set pipeline.DisplaySet, colorEnabled bool) error {
	rows := make([][]string, 0, len(set.Rows))
	for _, r := range set.Rows {
		cells := r.Cells()
		for i, c := range cells {
			cells[i] = truncate.StringWithTail(CleanText(c), maxCellWidth, "…")
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Headers(set)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if !colorEnabled || row < 0 || row >= len(set.Rows) {
				return cellStyle
			}
			if style, ok := classStyles[set.Rows[row].Class]; ok {
				return style
			}
			return cellStyle
		})
	if colorEnabled {
		t = t.BorderStyle(borderStyle)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Summary(set))
	return err
}

// Summary is the status line under a table.
func Summary(set pipeline.DisplaySet) string {
	c := set.Counts
	line := fmt.Sprintf("%d shown, %d total (%d added, %d changed, %d removed)",
		len(set.Rows), c.Total, c.Added, c.Changed, c.Removed)
	if set.Filter != "" {
		line += fmt.Sprintf(" filter %q", set.Filter)
	}
	if len(set.Ignored) > 0 {
		line += fmt.Sprintf(" ignored %v", set.Ignored)
	}
	if set.Err != nil {
		line += " error: " + CleanText(set.Err.Error())
	}
	return line
}
