package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tcpview/tcpview/internal/pipeline"
	"github.com/tcpview/tcpview/internal/schedule"
	"github.com/tcpview/tcpview/internal/sorting"
	"github.com/tcpview/tcpview/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1).
			Width(100)

	autoOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	autoOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#767676")). // Dimmed Gray
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffdf87")) // Amber

	actionMenuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffdf87")). // Amber
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true)

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd75f"))             // Green
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaf00"))             // Orange
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Faint(true) // Red
)

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

type actionKind int

const (
	actionNone actionKind = iota
	actionKill            // SIGKILL
	actionTerm            // SIGTERM
)

// Options configure a TUI session.
type Options struct {
	Source      pipeline.Snapshotter
	Interval    time.Duration
	PurgeAfter  time.Duration
	AutoRefresh bool
	Filter      string
	Sort        sorting.State
	Version     string
}

type MainModel struct {
	state    modelState
	table    table.Model
	input    textinput.Model
	viewport viewport.Model

	session *pipeline.Session
	source  pipeline.Snapshotter
	view    pipeline.DisplaySet
	detail  *model.DisplayRow

	interval   time.Duration
	purgeAfter time.Duration
	refresh    schedule.Timer
	purge      schedule.Timer
	firstTick  uint64
	polling    bool
	pollIsAuto bool

	statusMsg string // transient status/error message shown in status line
	width     int
	height    int
	quitting  bool
	version   string

	// Mouse double-click tracking
	lastClickTime time.Time
	lastClickX    int
	lastClickY    int

	actionMenuOpen bool
	pendingAction  actionKind
}

func InitialModel(opts Options) MainModel {
	t := table.New(
		table.WithColumns(baseColumns()),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "name:nginx status:listen rport:443 ..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.SetValue(opts.Filter)
	ti.Blur()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	session := pipeline.NewSession(opts.Source)
	session.SetFilter(opts.Filter)
	session.SetSort(opts.Sort)

	m := MainModel{
		state:      stateList,
		table:      t,
		input:      ti,
		viewport:   vp,
		session:    session,
		source:     opts.Source,
		interval:   opts.Interval,
		purgeAfter: opts.PurgeAfter,
		version:    opts.Version,
		polling:    true, // Init starts the first poll
	}
	if opts.AutoRefresh {
		m.firstTick = m.refresh.Start()
	}
	m.view = session.View()
	m.table.SetColumns(m.getColumns())
	return m
}

func Start(opts Options) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.poll(),
		tea.EnableMouseCellMotion,
	}
	if m.refresh.Enabled() {
		cmds = append(cmds, m.refreshTick(m.firstTick))
	}
	return tea.Batch(cmds...)
}
