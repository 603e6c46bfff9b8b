package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/younwookim/tickhook/internal/application/monitor"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tickMsg time.Time

type watchModel struct {
	mon      *monitor.Monitor
	path     string
	interval time.Duration
	table    table.Model
	last     monitor.Reading
	have     bool
	err      error
	paused   bool
}

func newWatchModel(mon *monitor.Monitor, path string, interval time.Duration) *watchModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "field", Width: 10},
			{Title: "value", Width: 28},
		}),
		table.WithHeight(15),
		table.WithFocused(false),
	)
	return &watchModel{mon: mon, path: path, interval: interval, table: t}
}

func (m *watchModel) Init() tea.Cmd {
	return m.poll()
}

func (m *watchModel) poll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		}

	case tickMsg:
		if !m.paused {
			m.refresh()
		}
		return m, m.poll()
	}
	return m, nil
}

func (m *watchModel) refresh() {
	r, err := m.mon.Read()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.last = r
	m.have = true

	fields := monitor.Fields(r.Snapshot)
	rows := make([]table.Row, 0, len(fields))
	for _, kv := range fields {
		rows = append(rows, table.Row{kv[0], kv[1]})
	}
	m.table.SetRows(rows)
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tickhook watch"))
	b.WriteString(" " + m.path + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("read failed: %v", m.err)))
		b.WriteString("\n\n")
	case !m.have:
		b.WriteString(helpStyle.Render("waiting for status..."))
		b.WriteString("\n\n")
	default:
		b.WriteString(m.statusLine())
		b.WriteString("\n\n")
	}

	if m.have {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
	}

	help := "q: quit | p: pause"
	if m.paused {
		help += " | PAUSED"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m *watchModel) statusLine() string {
	if m.last.First {
		return helpStyle.Render("first reading")
	}
	running := staleStyle.Render("STALE")
	if m.last.Fresh {
		running = liveStyle.Render("RUNNING")
	}
	inputs := staleStyle.Render("INPUTS_OFF")
	if m.last.Polling {
		inputs = liveStyle.Render("INPUTS_ON")
	}
	return running + "  " + inputs
}
