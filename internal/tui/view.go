package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	if m.state == stateDetail {
		return outerStyle.Render(m.detailView())
	}

	status := "Mode: Navigation (Press / to filter)"
	switch {
	case m.statusMsg != "":
		status = errorStyle.Render(m.statusMsg)
	case m.view.Err != nil:
		status = errorStyle.Render(fmt.Sprintf("Error: %v", m.view.Err))
	case len(m.view.Ignored) > 0:
		status = warnStyle.Render("Ignored filter terms: " + strings.Join(m.view.Ignored, " "))
	case m.input.Focused():
		status = "Mode: Filtering (Press Esc/Enter to stop)"
	case m.polling:
		status = "Refreshing..."
	}

	autoBadge := autoOffStyle.Render("auto-refresh off")
	if m.refresh.Enabled() {
		autoBadge = autoOnStyle.Render(fmt.Sprintf("auto-refresh %v", m.interval))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("tcpview"),
		autoBadge,
	)

	c := m.view.Counts
	helpText := fmt.Sprintf("Shown: %d/%d +%d ~%d -%d | Enter: Detail | 1-0: Sort | r: Refresh | a: Auto | x: Kill | q: Quit",
		len(m.view.Rows), c.Total, c.Added, c.Changed, c.Removed)

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(m.input.View()),
			highlightRows(m.table.View()),
			lipgloss.NewStyle().Height(1).Render(""),
			footerStyle.Width(m.width-4).Render(m.withVersion(helpText)),
		),
	)
}

func (m MainModel) detailView() string {
	title := "Connection Detail"
	if !m.viewport.AtTop() && !m.viewport.AtBottom() {
		title += " ↕"
	} else if !m.viewport.AtTop() {
		title += " ↑"
	} else if !m.viewport.AtBottom() {
		title += " ↓"
	}

	pid := 0
	headerComponents := []string{titleStyle.Render("tcpview")}
	if m.detail != nil {
		pid = m.detail.Row.PID
		if pid > 0 {
			pidStyle := lipgloss.NewStyle().
				Background(lipgloss.Color("#22aa22")). // Green
				Foreground(lipgloss.Color("#ffffff")). // White
				Padding(0, 1).
				Bold(true)
			headerComponents = append(headerComponents, pidStyle.Render(fmt.Sprintf("PID %d", pid)))
		}
	}

	var helpText string
	plain := false
	switch {
	case m.actionMenuOpen:
		helpText = actionMenuStyle.Render("Esc/q: cancel | Actions:  [t]erm  [k]ill")
	case m.pendingAction == actionKill:
		helpText = confirmStyle.Render(fmt.Sprintf("Kill PID %d? [y]es / [n]o", pid))
	case m.pendingAction == actionTerm:
		helpText = confirmStyle.Render(fmt.Sprintf("Terminate PID %d? [y]es / [n]o", pid))
	case m.statusMsg != "":
		helpText = errorStyle.Render(m.statusMsg)
	default:
		helpText = "x: Actions | r: Refresh | Esc/q: Back | Up/Down: Scroll"
		plain = true
	}
	footerContent := helpText
	if plain {
		footerContent = m.withVersion(helpText)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, headerComponents...),
		lipgloss.NewStyle().Height(1).Render(""),
		tableHeaderStyle.Width(m.viewport.Width).Render(title),
		lipgloss.NewStyle().PaddingLeft(1).Render(m.viewport.View()),
		lipgloss.NewStyle().Height(1).Render(""),
		footerStyle.Width(m.width-4).Render(footerContent),
	)
}

// withVersion right-aligns the version after the help text when it fits.
func (m MainModel) withVersion(helpText string) string {
	if m.version == "" {
		return helpText
	}
	gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
	if gap <= 0 {
		return helpText
	}
	return helpText + strings.Repeat(" ", gap) + m.version
}
