package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title   = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(Subtext0)
	Hot     = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Present = lipgloss.NewStyle().Foreground(Green)
	Absent  = lipgloss.NewStyle().Foreground(Red)
	Warn    = lipgloss.NewStyle().Foreground(Yellow)
)

// ClassStatus colors the class phase label.
func ClassStatus(status string) lipgloss.Style {
	switch status {
	case "starting":
		return Present
	case "ending":
		return Warn
	default:
		return Title
	}
}

// Rate colors an attendance percentage against the goal.
func Rate(rate int, goal float64) lipgloss.Style {
	switch {
	case float64(rate) >= goal:
		return Present
	case float64(rate) >= goal-15:
		return Warn
	default:
		return Absent
	}
}
