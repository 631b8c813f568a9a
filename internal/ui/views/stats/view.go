package stats

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/ui/components"
	"faceclass/internal/ui/theme"
)

type StandingsPort interface {
	Standings(ctx context.Context) ([]dto.Standing, error)
	Weekly(ctx context.Context) (dto.WeeklyOverview, error)
}

type StandingsLoadedMsg struct {
	Standings []dto.Standing
	Week      dto.WeeklyOverview
	Err       error
}

type Model struct {
	port      StandingsPort
	snapshot  dto.RosterOutput
	standings []dto.Standing
	week      dto.WeeklyOverview
	err       error
	width     int
	height    int
}

func New(port StandingsPort) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m *Model) SetSnapshot(snapshot dto.RosterOutput) { m.snapshot = snapshot }

// Refresh reloads per-student standings and the weekly overview.
func (m Model) Refresh() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return StandingsLoadedMsg{}
		}
		ctx := context.Background()
		out, err := port.Standings(ctx)
		if err != nil {
			return StandingsLoadedMsg{Err: err}
		}
		week, err := port.Weekly(ctx)
		return StandingsLoadedMsg{Standings: out, Week: week, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StandingsLoadedMsg:
		m.standings = msg.Standings
		m.week = msg.Week
		m.err = msg.Err
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.Refresh()
		}
	}
	return m, nil
}

func (m Model) View() string {
	metrics := m.snapshot.Metrics
	barW := max(m.width/2-20, 10)

	goal := "goal not met"
	goalStyle := theme.Absent
	if metrics.AttendanceGoalMet {
		goal = "goal met"
		goalStyle = theme.Present
	}
	overview := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Attendance"),
		"",
		"Rate     "+components.Bar(float64(metrics.AttendanceRatePercent), barW, metrics.AttendanceGoalPercent,
			theme.Rate(metrics.AttendanceRatePercent, metrics.AttendanceGoalPercent)),
		"Progress "+components.Bar(metrics.ClassProgressPercent, barW, 0, theme.Title),
		"",
		fmt.Sprintf("Goal %.0f%%  %s", metrics.AttendanceGoalPercent, goalStyle.Render(goal)),
		fmt.Sprintf("Elapsed %.0f of %.0f min", metrics.ElapsedMinutes, m.snapshot.Session.PlannedDurationMinutes),
		"Class "+theme.ClassStatus(metrics.ClassStatus).Render(metrics.ClassStatus),
		"",
		m.weekView(barW, metrics.AttendanceGoalPercent),
	)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Standings") + "\n\n")
	switch {
	case m.err != nil:
		sb.WriteString(theme.Absent.Render(m.err.Error()))
	case len(m.standings) == 0:
		sb.WriteString(theme.Muted.Render("no history yet"))
	}
	for _, s := range m.standings {
		fmt.Fprintf(&sb, "%-22s %3.0f%%  %s\n", s.DisplayName, s.Percent,
			standingStyle(s.Standing).Render(fmt.Sprintf("%s (%d/%d)", s.Standing, s.SessionsAttended, s.SessionsTotal)))
	}

	half := max(m.width/2-2, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Pane.Width(half).Render(overview),
		theme.Pane.Width(half).Render(sb.String()),
	)
}

func (m Model) weekView(barW int, goal float64) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("This week"))
	if len(m.week.Days) == 0 {
		sb.WriteString("\n" + theme.Muted.Render("no sessions this week"))
		return sb.String()
	}
	for _, d := range m.week.Days {
		sb.WriteString("\n" + fmt.Sprintf("%-8s ", d.Day))
		if d.Sessions == 0 {
			sb.WriteString(theme.Muted.Render("-"))
			continue
		}
		rate := float64(d.RatePercent)
		sb.WriteString(components.Bar(rate, barW, goal, theme.Rate(d.RatePercent, goal)))
	}
	fmt.Fprintf(&sb, "\nAverage  %d%%", m.week.AveragePercent)
	return sb.String()
}

func standingStyle(standing string) lipgloss.Style {
	switch standing {
	case "excellent", "good":
		return theme.Present
	case "warning":
		return theme.Warn
	default:
		return theme.Absent
	}
}
