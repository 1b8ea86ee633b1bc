package components

import (
	"fmt"

	"github.com/theirongolddev/spendviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// load progress and the data source on the right.
func RenderStatusBar(width int, source string, loading, failed int) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	warnStyle := lipgloss.NewStyle().
		Foreground(t.Red).
		Background(t.Surface)
	busyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	left := " [?]help  [r]eload  [q]uit"
	right := ""
	switch {
	case loading > 0:
		right = busyStyle.Render(fmt.Sprintf("loading %d ", loading))
	case failed > 0:
		right = warnStyle.Render(fmt.Sprintf("%d failed ", failed))
	}
	if source != "" {
		right += style.UnsetWidth().Render(source + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + fmt.Sprintf("%*s", padding, "") + right)
}
