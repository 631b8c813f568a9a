package components_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"faceclass/internal/ui/components"
)

func typeInto(p components.Palette, text string) components.Palette {
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return p
}

func submitted(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(components.PaletteSubmitMsg)
	if !ok {
		t.Fatalf("expected submit msg, got %T", cmd())
	}
	return msg.Input
}

func TestPaletteTabCompletesSelectedCommand(t *testing.T) {
	t.Parallel()
	p := components.NewPalette()
	p.Open()
	p = typeInto(p, "sc")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := submitted(t, cmd); got != "scan:auto" {
		t.Fatalf("expected scan:auto, got %q", got)
	}
	if p.Visible() {
		t.Fatal("palette should close on enter")
	}
}

func TestPaletteSubmitsTrimmedInput(t *testing.T) {
	t.Parallel()
	p := components.NewPalette()
	p.Open()
	p = typeInto(p, "  enroll Maria Clara ")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := submitted(t, cmd); got != "enroll Maria Clara" {
		t.Fatalf("unexpected input %q", got)
	}
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := components.NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.Visible() {
		t.Fatal("palette should close on esc")
	}
	if _, ok := cmd().(components.PaletteCancelMsg); !ok {
		t.Fatal("expected cancel msg")
	}
	if p.View() != "" {
		t.Fatal("hidden palette renders nothing")
	}
}
