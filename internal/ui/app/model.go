package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/ui/components"
	"faceclass/internal/ui/theme"
	dashboardview "faceclass/internal/ui/views/dashboard"
	reportsview "faceclass/internal/ui/views/reports"
	scannerview "faceclass/internal/ui/views/scanner"
	statsview "faceclass/internal/ui/views/stats"
)

const (
	eventBuffer = 64
	toastTTL    = 3 * time.Second
)

// AttendancePort is everything the TUI needs from the engine. Views get
// narrower slices of it.
type AttendancePort interface {
	scannerview.ScanPort
	dashboardview.AbsencePort
	statsview.StandingsPort
	reportsview.ReportsPort
	Roster(ctx context.Context, query dto.RosterQuery) (dto.RosterOutput, error)
	Enroll(ctx context.Context, input dto.EnrollInput) (dto.Record, error)
	EndSession(ctx context.Context) (dto.EndSessionOutput, error)
	Subscribe(buffer int) (<-chan dto.Event, func())
}

type tabID int

const (
	tabScanner tabID = iota
	tabDashboard
	tabStats
	tabReports
	tabCount
)

var tabLabels = [tabCount]string{"Scanner", "Dashboard", "Stats", "Reports"}

type eventMsg struct {
	event dto.Event
	ok    bool
}

type rosterLoadedMsg struct {
	out dto.RosterOutput
	err error
}

type toastExpiredMsg struct{ seq int }

type enrolledMsg struct {
	rec dto.Record
	err error
}

type sessionEndedMsg struct {
	out dto.EndSessionOutput
	err error
}

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Scan    key.Binding
	Absent  key.Binding
	Filter  key.Binding
	Report  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Scan:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "scan")),
		Absent:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "mark absent")),
		Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "present only")),
		Report:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate report")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Scan},
		{k.Absent, k.Filter, k.Report},
		{k.Help, k.Palette, k.Quit},
	}
}

// Model is the root Bubble Tea model. It owns tab routing, the event
// subscription and toasts; views only render what they are handed.
type Model struct {
	port   AttendancePort
	events <-chan dto.Event
	cancel func()

	scanView      scannerview.Model
	dashboardView dashboardview.Model
	statsView     statsview.Model
	reportsView   reportsview.Model

	snapshot  dto.RosterOutput
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	toastSeq  int
	width     int
	height    int
}

func NewModel(port AttendancePort) Model {
	events, cancel := port.Subscribe(eventBuffer)
	return Model{
		port:          port,
		events:        events,
		cancel:        cancel,
		scanView:      scannerview.New(port),
		dashboardView: dashboardview.New(port),
		statsView:     statsview.New(port),
		reportsView:   reportsview.New(port),
		activeTab:     tabScanner,
		keys:          defaultKeys(),
		help:          help.New(),
		palette:       components.NewPalette(),
		status:        "ready",
	}
}

// Close drops the event subscription.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitEvent(),
		m.loadRosterCmd(),
		m.statsView.Init(),
		m.reportsView.Init(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case eventMsg:
		if !msg.ok {
			m.status = "event stream closed"
			return m, nil
		}
		cmds = append(cmds, m.waitEvent(), m.loadRosterCmd())
		if text, ok := toastFor(msg.event); ok {
			cmds = append(cmds, m.toast(text))
		}
		if msg.event.Type == "session_ended" {
			cmds = append(cmds, m.statsView.Refresh())
		}
		return m, tea.Batch(cmds...)

	case rosterLoadedMsg:
		if msg.err != nil {
			m.status = "roster: " + msg.err.Error()
			return m, nil
		}
		m.snapshot = msg.out
		m.scanView.SetSnapshot(msg.out)
		m.dashboardView.SetSnapshot(msg.out)
		m.statsView.SetSnapshot(msg.out)
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.status = "ready"
		}
		return m, nil

	case scannerview.ScanDoneMsg:
		var cmd tea.Cmd
		m.scanView, cmd = m.scanView.Update(msg)
		return m, cmd

	case dashboardview.MarkedAbsentMsg:
		switch {
		case msg.Err != nil:
			return m, m.toast("mark absent failed: " + msg.Err.Error())
		case !msg.Out.Known:
			return m, m.toast("unknown student")
		case !msg.Out.Changed:
			return m, m.toast(msg.Out.Record.DisplayName + " was already absent")
		}
		return m, nil

	case statsview.StandingsLoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case reportsview.RulesLoadedMsg, reportsview.GeneratedMsg:
		var cmd tea.Cmd
		m.reportsView, cmd = m.reportsView.Update(msg)
		return m, cmd

	case enrolledMsg:
		if msg.err != nil {
			return m, m.toast("enroll failed: " + msg.err.Error())
		}
		return m, nil

	case sessionEndedMsg:
		if msg.err != nil {
			return m, m.toast("end session: " + msg.err.Error())
		}
		if len(msg.out.Alerts) > 0 {
			return m, m.toast(fmt.Sprintf("%d attendance alert(s) written", len(msg.out.Alerts)))
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.Close()
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabScanner:
		m.scanView, tabCmd = m.scanView.Update(msg)
	case tabDashboard:
		m.dashboardView, tabCmd = m.dashboardView.Update(msg)
	case tabStats:
		m.statsView, tabCmd = m.statsView.Update(msg)
	case tabReports:
		m.reportsView, tabCmd = m.reportsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabScanner:
		return m.scanView.View()
	case tabDashboard:
		return m.dashboardView.View()
	case tabStats:
		return m.statsView.View()
	case tabReports:
		return m.reportsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "faceclass  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	metrics := m.snapshot.Metrics
	left := fmt.Sprintf("%s %d/%d  %s",
		theme.Title.Render(m.snapshot.Session.ClassLabel),
		metrics.PresentCount, metrics.TotalEnrolled,
		m.status)
	if metrics.Ended {
		left = theme.Warn.Render("● ended") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "scan":
		if rest == "" {
			m.status = "usage: scan <name>"
			return m, nil
		}
		m.activeTab = tabScanner
		return m, m.scanView.Scan(rest)

	case "scan:auto":
		m.activeTab = tabScanner
		return m, m.scanView.Scan("")

	case "absent":
		if rest == "" {
			m.status = "usage: absent <student-id>"
			return m, nil
		}
		port := m.port
		return m, func() tea.Msg {
			out, err := port.MarkAbsent(context.Background(), rest)
			return dashboardview.MarkedAbsentMsg{Out: out, Err: err}
		}

	case "enroll":
		if rest == "" {
			m.status = "usage: enroll <name>"
			return m, nil
		}
		port := m.port
		return m, func() tea.Msg {
			rec, err := port.Enroll(context.Background(), dto.EnrollInput{Name: rest})
			return enrolledMsg{rec: rec, err: err}
		}

	case "report":
		if len(parts) < 2 {
			m.status = "usage: report <kind> [excel|markdown]"
			return m, nil
		}
		format := "excel"
		if len(parts) >= 3 {
			format = parts[2]
		}
		m.activeTab = tabReports
		return m, m.reportsView.Generate(parts[1], format)

	case "session:end":
		port := m.port
		return m, func() tea.Msg {
			out, err := port.EndSession(context.Background())
			return sessionEndedMsg{out: out, err: err}
		}

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.scanView, _ = m.scanView.Update(sz)
	m.dashboardView, _ = m.dashboardView.Update(sz)
	m.statsView, _ = m.statsView.Update(sz)
	m.reportsView, _ = m.reportsView.Update(sz)
}

func (m *Model) toast(text string) tea.Cmd {
	m.toastSeq++
	m.status = text
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m Model) waitEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}

func (m Model) loadRosterCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Roster(context.Background(), dto.RosterQuery{})
		return rosterLoadedMsg{out: out, err: err}
	}
}

// toastFor mirrors the headless log notifier for the status bar.
func toastFor(ev dto.Event) (string, bool) {
	name := ""
	if ev.Record != nil {
		name = ev.Record.DisplayName
	}
	switch ev.Type {
	case "scan_accepted":
		return "✓ " + name + " marked present", true
	case "scan_duplicate":
		return name + " is already registered", true
	case "absence_marked":
		return name + " marked absent", true
	case "student_enrolled":
		return name + " enrolled", true
	case "session_ended":
		return fmt.Sprintf("session ended with %d%% attendance", ev.Metrics.AttendanceRatePercent), true
	}
	return "", false
}
