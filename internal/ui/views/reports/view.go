package reports

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/platform/future"
	"faceclass/internal/ui/theme"
)

const generateTimeout = time.Minute

type ReportsPort interface {
	ScheduleRules(ctx context.Context) ([]dto.ScheduleRule, error)
	TriggerReport(ctx context.Context, input dto.ReportRequest) (*future.Future[dto.ReportHandle], error)
}

type RulesLoadedMsg struct {
	Rules []dto.ScheduleRule
	Err   error
}

// GeneratedMsg is emitted once a triggered report resolves.
type GeneratedMsg struct {
	Handle dto.ReportHandle
	Err    error
}

// Kinds lists the report types in the order of their number keys.
var Kinds = []string{"attendance_summary", "individual_report", "class_analytics", "weekly_summary"}

type Model struct {
	port      ReportsPort
	rules     []dto.ScheduleRule
	generated []dto.ReportHandle
	kind      int
	format    string
	pending   int
	status    string
	width     int
	height    int
}

func New(port ReportsPort) Model {
	return Model{port: port, format: "excel"}
}

func (m Model) Init() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return RulesLoadedMsg{}
		}
		rules, err := port.ScheduleRules(context.Background())
		return RulesLoadedMsg{Rules: rules, Err: err}
	}
}

// Generate triggers a report and returns the command that waits for it.
func (m *Model) Generate(kind, format string) tea.Cmd {
	if m.port == nil {
		return nil
	}
	fut, err := m.port.TriggerReport(context.Background(), dto.ReportRequest{Kind: kind, Format: format})
	if err != nil {
		m.status = theme.Absent.Render(err.Error())
		return nil
	}
	m.pending++
	m.status = fmt.Sprintf("generating %s (%s)…", kind, format)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()
		handle, err := fut.Wait(ctx)
		return GeneratedMsg{Handle: handle, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case RulesLoadedMsg:
		m.rules = msg.Rules
		if msg.Err != nil {
			m.status = theme.Absent.Render("rules: " + msg.Err.Error())
		}

	case GeneratedMsg:
		m.pending = max(m.pending-1, 0)
		if msg.Err != nil {
			m.status = theme.Absent.Render("report failed: " + msg.Err.Error())
			return m, nil
		}
		m.generated = append([]dto.ReportHandle{msg.Handle}, m.generated...)
		m.status = theme.Present.Render("saved " + filepath.Base(msg.Handle.Path))

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "1", "2", "3", "4":
			m.kind = int(key[0] - '1')
		case "up", "k":
			m.kind = (m.kind + len(Kinds) - 1) % len(Kinds)
		case "down", "j":
			m.kind = (m.kind + 1) % len(Kinds)
		case "x":
			m.format = "excel"
		case "m":
			m.format = "markdown"
		case "enter", "g":
			cmd := m.Generate(Kinds[m.kind], m.format)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	var left strings.Builder
	left.WriteString(theme.Title.Render("Generate") + "\n\n")
	for i, kind := range Kinds {
		line := fmt.Sprintf("%d  %s", i+1, kind)
		if i == m.kind {
			line = theme.Hot.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		left.WriteString(line + "\n")
	}
	fmt.Fprintf(&left, "\nformat %s  %s\n", theme.Title.Render(m.format), theme.Muted.Render("x:excel m:markdown enter:generate"))
	if m.pending > 0 {
		fmt.Fprintf(&left, "%s\n", theme.Warn.Render(fmt.Sprintf("%d pending", m.pending)))
	}
	left.WriteString("\n" + m.status + "\n")
	if len(m.generated) > 0 {
		left.WriteString("\n" + theme.Title.Render("This session") + "\n")
		for _, h := range m.generated {
			fmt.Fprintf(&left, "%s  %s\n", theme.Muted.Render(h.GeneratedAt.Format("15:04:05")), filepath.Base(h.Path))
		}
	}

	var right strings.Builder
	right.WriteString(theme.Title.Render("Schedules") + "\n\n")
	if len(m.rules) == 0 {
		right.WriteString(theme.Muted.Render("no schedule rules"))
	}
	for _, rule := range m.rules {
		state := theme.Present.Render("on ")
		if !rule.Enabled {
			state = theme.Muted.Render("off")
		}
		next := ""
		if !rule.NextRun.IsZero() {
			next = theme.Muted.Render(" next " + rule.NextRun.Format("Mon 02 Jan 15:04"))
		}
		fmt.Fprintf(&right, "%s %s\n    %s%s\n", state, rule.Name, rule.CadenceDescription, next)
	}

	half := max(m.width/2-2, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Pane.Width(half).Render(left.String()),
		theme.Pane.Width(half).Render(right.String()),
	)
}
