package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/modules/attendance/dto"
	apperrors "faceclass/internal/platform/errors"
	"faceclass/internal/ui/theme"
)

const recentLimit = 8

type ScanPort interface {
	StartRecognition(ctx context.Context) (dto.ScanOutput, error)
	SubmitScan(ctx context.Context, input dto.ScanInput) (dto.ScanOutput, error)
}

// ScanDoneMsg carries the outcome of a recognition started from this view.
type ScanDoneMsg struct {
	Out dto.ScanOutput
	Err error
}

type Model struct {
	port     ScanPort
	spinner  spinner.Model
	scanning bool
	last     string
	snapshot dto.RosterOutput
	width    int
	height   int
}

func New(port ScanPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(theme.Sapphire)
	return Model{port: port, spinner: sp, last: "press space to scan"}
}

// SetSnapshot replaces the roster the view renders from.
func (m *Model) SetSnapshot(snapshot dto.RosterOutput) { m.snapshot = snapshot }

func (m Model) Scanning() bool { return m.scanning }

// Scan starts recognition. An empty name lets the engine pick the next
// candidate.
func (m *Model) Scan(name string) tea.Cmd {
	if m.port == nil || m.scanning {
		return nil
	}
	m.scanning = true
	m.last = "scanning…"
	port := m.port
	run := func() tea.Msg {
		var (
			out dto.ScanOutput
			err error
		)
		if strings.TrimSpace(name) == "" {
			out, err = port.StartRecognition(context.Background())
		} else {
			out, err = port.SubmitScan(context.Background(), dto.ScanInput{Identity: name})
		}
		return ScanDoneMsg{Out: out, Err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ScanDoneMsg:
		m.last = describe(msg)
		m.scanning = false

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == " " || msg.String() == "enter" {
			cmd := m.Scan("")
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	metrics := m.snapshot.Metrics
	frame := theme.Muted.Render("[ camera idle ]")
	if m.scanning {
		frame = m.spinner.View() + " " + theme.Title.Render("recognizing face")
	}
	if metrics.Ended {
		frame = theme.Warn.Render("[ session ended ]")
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Scanner"),
		"",
		frame,
		"",
		m.last,
		"",
		theme.Muted.Render(fmt.Sprintf("%d/%d present", metrics.PresentCount, metrics.TotalEnrolled)),
	)

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recent scans") + "\n\n")
	shown := 0
	for _, rec := range m.snapshot.Records {
		if rec.Status != "present" || rec.ScanTimestamp == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s %s  %s\n", avatar(rec.AvatarTag), rec.DisplayName, theme.Muted.Render(rec.ScanTimestamp.Format(time.Kitchen)))
		shown++
		if shown == recentLimit {
			break
		}
	}
	if shown == 0 {
		sb.WriteString(theme.Muted.Render("nobody yet"))
	}

	half := max(m.width/2-2, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Pane.Width(half).Render(left),
		theme.Pane.Width(half).Render(sb.String()),
	)
}

func describe(msg ScanDoneMsg) string {
	switch {
	case errors.Is(msg.Err, apperrors.ErrPipelineBusy):
		return theme.Warn.Render("scanner busy, wait for the current scan")
	case errors.Is(msg.Err, apperrors.ErrSessionEnded):
		return theme.Warn.Render("session has ended")
	case msg.Err != nil:
		return theme.Absent.Render("scan failed: " + msg.Err.Error())
	case msg.Out.Duplicate:
		return theme.Warn.Render(msg.Out.Record.DisplayName + " is already registered")
	default:
		return theme.Present.Render("✓ " + msg.Out.Record.DisplayName + " marked present")
	}
}

func avatar(tag string) string {
	if tag == "" {
		return "•"
	}
	return tag
}
