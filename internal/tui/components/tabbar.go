package components

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/spendviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// TabVisualWidth is the rendered width of a tab label, including padding
// and the "[n]" shortcut hint shown on inactive tabs.
func TabVisualWidth(name string, index int, active bool) int {
	w := lipgloss.Width(name) + 2
	if !active {
		w += len(shortcut(index)) + 2
	}
	return w
}

func shortcut(index int) string {
	return strconv.Itoa(index + 1)
}

// RenderTabBar renders one tab per name. Tabs are numbered from 1; the
// number is the keyboard shortcut.
func RenderTabBar(names []string, activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	// Shortcut hints are dropped when the full bar would not fit.
	total := len(names) - 1
	for i, name := range names {
		total += TabVisualWidth(name, i, i == activeIdx)
	}
	hints := total <= width

	parts := make([]string, 0, len(names))
	for i, name := range names {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(name))
			continue
		}
		tab := inactiveStyle.Render(name)
		if hints {
			tab += dimKeyStyle.Render("[") + keyStyle.Render(shortcut(i)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, tab)
	}

	row := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a number key, or -1.
func TabIdxByKey(key string, count int) int {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > count {
		return -1
	}
	return n - 1
}
