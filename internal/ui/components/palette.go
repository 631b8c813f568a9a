package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	usageStyle    = lipgloss.NewStyle().Foreground(theme.Subtext0)
	selectedStyle = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
)

type paletteCommand struct {
	name  string
	args  string
	about string
}

// Keep in sync with executePalette in app/model.go.
var paletteCommands = []paletteCommand{
	{name: "scan", args: "<name>", about: "register a scan by name"},
	{name: "scan:auto", about: "run the recognition button"},
	{name: "absent", args: "<student-id>", about: "mark a student absent"},
	{name: "enroll", args: "<name>", about: "add an absent student"},
	{name: "report", args: "<kind> [excel|markdown]", about: "generate a report now"},
	{name: "session:end", about: "end the class session"},
}

// Palette is the ':' command line. Up/down pick a suggestion and tab
// completes its name.
type Palette struct {
	input    textinput.Model
	visible  bool
	width    int
	selected int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "scan Ana Silva"
	ti.CharLimit = 128
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.selected = 0
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// suggestions lists the commands whose name starts with the first word
// typed so far.
func (p Palette) suggestions() []paletteCommand {
	word, _, _ := strings.Cut(strings.TrimSpace(strings.ToLower(p.input.Value())), " ")
	var out []paletteCommand
	for _, c := range paletteCommands {
		if strings.HasPrefix(c.name, word) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "up":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "down":
			if p.selected < len(p.suggestions())-1 {
				p.selected++
			}
			return p, nil
		case "tab":
			if s := p.suggestions(); p.selected < len(s) {
				completed := s[p.selected].name
				if s[p.selected].args != "" {
					completed += " "
				}
				p.input.SetValue(completed)
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if n := len(p.suggestions()); p.selected >= n {
		p.selected = max(n-1, 0)
	}
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if suggestions := p.suggestions(); len(suggestions) > 0 {
		sb.WriteString("\n")
		for i, c := range suggestions {
			usage := strings.TrimSpace(c.name + " " + c.args)
			head := usageStyle.Render("  " + usage)
			if i == p.selected {
				head = selectedStyle.Render("› " + usage)
			}
			sb.WriteString(head + "  " + theme.Muted.Render(c.about) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
