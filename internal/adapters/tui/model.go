// Package tui is the interactive terminal shell: a live container table
// with start/stop key bindings.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/melih/lighthouse-deck/internal/core/ports"
)

type tickMsg time.Time

type refreshedMsg struct {
	snap *domain.Snapshot
	err  error
}

// Model is the bubbletea model for the container table.
type Model struct {
	service  ports.SyncService
	interval time.Duration

	table    table.Model
	snapshot *domain.Snapshot
	ids      []string
	lastErr  error
	notice   string
	quitting bool
}

var columns = []table.Column{
	{Title: "ID", Width: domain.ShortIDLength},
	{Title: "NAME", Width: 32},
	{Title: "STATUS", Width: 10},
	{Title: "COMMAND", Width: 12},
}

// New creates the table model. interval is the poll period.
func New(service ports.SyncService, interval time.Duration) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(accent).
		Bold(false)
	t.SetStyles(styles)

	return Model{
		service:  service,
		interval: interval,
		table:    t,
		snapshot: service.Snapshot(),
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(service ports.SyncService, interval time.Duration) error {
	_, err := tea.NewProgram(New(service, interval), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tick(m.interval))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd refreshes on a bubbletea worker goroutine so rendering never
// waits on the engine.
func (m Model) refreshCmd() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		err := service.Refresh(context.Background())
		return refreshedMsg{snap: service.Snapshot(), err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case tickMsg:
		m.syncRows()
		return m, tea.Batch(m.refreshCmd(), tick(m.interval))

	case refreshedMsg:
		m.snapshot = msg.snap
		m.lastErr = msg.err
		m.syncRows()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "r":
			m.notice = "refreshing"
			return m, m.refreshCmd()

		case "s", "enter":
			if id, name, ok := m.selected(); ok {
				m.service.DispatchStart(id)
				m.notice = fmt.Sprintf("start requested for %s", name)
				m.syncRows()
			}
			return m, nil

		case "x":
			if id, name, ok := m.selected(); ok {
				m.service.DispatchStop(id)
				m.notice = fmt.Sprintf("stop requested for %s", name)
				m.syncRows()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) selected() (id, name string, ok bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.ids) {
		return "", "", false
	}
	id = m.ids[i]
	name = id
	if c, found := m.snapshot.Find(id); found && c.Name != "" {
		name = c.Name
	}
	return id, name, true
}

// syncRows rebuilds the table from the current snapshot and command states.
func (m *Model) syncRows() {
	if m.snapshot == nil {
		return
	}
	rows := make([]table.Row, 0, len(m.snapshot.Containers))
	ids := make([]string, 0, len(m.snapshot.Containers))
	for _, c := range m.snapshot.Containers {
		rows = append(rows, table.Row{c.ShortID, c.Name, c.Status.String(), m.commandLabel(c.ID)})
		ids = append(ids, c.ID)
	}
	m.ids = ids
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) commandLabel(id string) string {
	if kind, ok := m.service.PendingCommand(id); ok {
		if kind == domain.CommandStart {
			return "starting…"
		}
		return "stopping…"
	}
	switch m.service.CommandState(id) {
	case domain.CommandSettled:
		return "sent"
	case domain.CommandFailed:
		return "failed"
	default:
		return ""
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Lighthouse Deck - Containers"))
	b.WriteString("\n")
	b.WriteString(m.summary())
	b.WriteString("\n")
	b.WriteString(tableBorderStyle.Render(m.table.View()))
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("⚠ " + m.lastErr.Error() + " (showing last known list)"))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ select • s start • x stop • r refresh • q quit"))
	return b.String()
}

func (m Model) summary() string {
	if m.snapshot == nil || m.snapshot.Generation == 0 {
		return helpStyle.UnsetMarginTop().Render("waiting for first refresh…")
	}
	var running, exited, unknown int
	for _, c := range m.snapshot.Containers {
		switch c.Status {
		case domain.StatusRunning:
			running++
		case domain.StatusExited:
			exited++
		default:
			unknown++
		}
	}
	return fmt.Sprintf("%s  %s  %s  %s",
		summaryStyle(runningDot).Render(fmt.Sprintf("● %d running", running)),
		summaryStyle(exitedDot).Render(fmt.Sprintf("● %d exited", exited)),
		summaryStyle(unknownDot).Render(fmt.Sprintf("● %d other", unknown)),
		helpStyle.UnsetMarginTop().Render("updated "+m.snapshot.RefreshedAt.Format("15:04:05")),
	)
}
