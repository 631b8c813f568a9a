package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"faceclass/internal/ui/theme"
)

// Bar renders a horizontal percentage bar of the given cell width. A goal in
// (0,100] is drawn as a marker.
func Bar(percent float64, width int, goal float64, fill lipgloss.Style) string {
	if width < 4 {
		width = 4
	}
	percent = max(0, min(percent, 100))
	filled := int(percent / 100 * float64(width))
	marker := -1
	if goal > 0 && goal <= 100 {
		marker = min(int(goal/100*float64(width)), width-1)
	}
	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == marker:
			sb.WriteString(theme.Hot.Render("│"))
		case i < filled:
			sb.WriteString(fill.Render("█"))
		default:
			sb.WriteString(theme.Muted.Render("░"))
		}
	}
	return sb.String() + fmt.Sprintf(" %3.0f%%", percent)
}
