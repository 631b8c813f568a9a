package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/ui/components"
	"faceclass/internal/ui/theme"
)

type AbsencePort interface {
	MarkAbsent(ctx context.Context, studentID string) (dto.MarkAbsentOutput, error)
}

type MarkedAbsentMsg struct {
	Out dto.MarkAbsentOutput
	Err error
}

type Model struct {
	port        AbsencePort
	table       table.Model
	snapshot    dto.RosterOutput
	presentOnly bool
	width       int
	height      int
}

func New(port AbsencePort) Model {
	t := table.New(
		table.WithColumns(columns(60)),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(theme.Sapphire).BorderForeground(theme.Surface1).Bold(true)
	styles.Selected = styles.Selected.Foreground(theme.Base).Background(theme.Lavender)
	t.SetStyles(styles)
	return Model{port: port, table: t}
}

func (m *Model) SetSnapshot(snapshot dto.RosterOutput) {
	m.snapshot = snapshot
	m.table.SetRows(m.rows())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(m.width - 4))
		m.table.SetHeight(max(m.height-12, 3))

	case tea.KeyMsg:
		switch msg.String() {
		case "f":
			m.presentOnly = !m.presentOnly
			m.table.SetRows(m.rows())
			return m, nil
		case "a":
			return m, m.markAbsentCmd()
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	metrics := m.snapshot.Metrics
	session := m.snapshot.Session

	header := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(session.ClassLabel+"  "+session.Subject),
		theme.Muted.Render(fmt.Sprintf("%s · %s · started %s", session.Instructor, session.Room, session.StartTime.Format(time.Kitchen))),
	)
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Present", theme.Present.Render(fmt.Sprint(metrics.PresentCount))),
		card("Absent", theme.Absent.Render(fmt.Sprint(metrics.AbsentCount))),
		card("Rate", theme.Rate(metrics.AttendanceRatePercent, metrics.AttendanceGoalPercent).Render(fmt.Sprintf("%d%%", metrics.AttendanceRatePercent))),
		card("Class", theme.ClassStatus(metrics.ClassStatus).Render(metrics.ClassStatus)),
	)
	progress := "Progress " + components.Bar(metrics.ClassProgressPercent, max(m.width-20, 10), 0, theme.Title)

	filter := "all students"
	if m.presentOnly {
		filter = "present only"
	}
	footer := theme.Muted.Render(filter + "  ·  f:filter  a:mark absent")
	return lipgloss.JoinVertical(lipgloss.Left, header, cards, progress, "", m.table.View(), footer)
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.snapshot.Records))
	for _, rec := range m.snapshot.Records {
		if m.presentOnly && rec.Status != "present" {
			continue
		}
		at := "—"
		if rec.ScanTimestamp != nil {
			at = rec.ScanTimestamp.Format("15:04")
		}
		rows = append(rows, table.Row{rec.AvatarTag, rec.DisplayName, rec.Status, at, rec.StudentID})
	}
	return rows
}

func (m Model) markAbsentCmd() tea.Cmd {
	row := m.table.SelectedRow()
	if m.port == nil || len(row) < 5 {
		return nil
	}
	id := row[4]
	port := m.port
	return func() tea.Msg {
		out, err := port.MarkAbsent(context.Background(), id)
		return MarkedAbsentMsg{Out: out, Err: err}
	}
}

func columns(width int) []table.Column {
	name := max(width-3-10-8-38-8, 16)
	return []table.Column{
		{Title: "", Width: 3},
		{Title: "Student", Width: name},
		{Title: "Status", Width: 10},
		{Title: "Scan", Width: 8},
		{Title: "ID", Width: 38},
	}
}

func card(label, value string) string {
	return theme.Pane.Width(16).Render(theme.Muted.Render(label) + "\n" + value)
}
