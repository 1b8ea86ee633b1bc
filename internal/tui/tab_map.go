package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/tui/components"
	"github.com/theirongolddev/spendviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// updateMapKeys handles list navigation and selection on the map tab. It
// reports whether the key was consumed.
func (a *App) updateMapKeys(key string) bool {
	n := len(a.maps.spec.Markers)
	switch key {
	case "j", "down":
		if a.maps.cursor < n-1 {
			a.maps.cursor++
		}
		return true
	case "k", "up":
		if a.maps.cursor > 0 {
			a.maps.cursor--
		}
		return true
	case "enter", " ":
		if n > 0 {
			a.maps.selection.Select(a.maps.spec.Markers[a.maps.cursor].Code)
		}
		return true
	}
	return false
}

func (a App) renderMapTab(cw int) string {
	t := theme.Active
	p := a.panels[a.maps.panel]

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true)
	header := " " + titleStyle.Render(p.panel.Title) + "\n"

	snap := p.loader.Snapshot()
	switch {
	case snap.State == loader.Idle || snap.State == loader.Loading:
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		spin := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render(a.spinner.View())
		return header + components.ContentCard("Regions", spin+muted.Render(" Loading "+p.panel.Resource+"..."), cw)
	case snap.State == loader.Failed:
		return header + components.ErrorCard(p.panel.Title, snap.Message, cw)
	case p.err != nil:
		return header + components.ErrorCard(p.panel.Title, p.err.Error(), cw)
	}

	listW := cw * 11 / 20
	detailW := cw - listW
	if a.isCompactLayout() {
		return header + a.renderRegionList(cw) + "\n" + a.renderRegionDetail(cw)
	}
	return header + components.CardRow([]string{a.renderRegionList(listW), a.renderRegionDetail(detailW)})
}

// renderRegionList shows each marker with its scale colour, sized bar and
// total. The cursor row is highlighted; the selected row is marked.
func (a App) renderRegionList(width int) string {
	t := theme.Active
	spec := a.maps.spec
	inner := components.CardInnerWidth(width)
	selected, hasSel := a.maps.selection.Selected()

	nameW := 0
	for _, m := range spec.Markers {
		nameW = max(nameW, lipgloss.Width(m.DisplayName))
	}
	nameW = min(nameW, inner/2)
	valueW := 10
	barW := max(4, inner-nameW-valueW-4)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	cursorStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	for i, m := range spec.Markers {
		mark := " "
		if hasSel && m.Code == selected.Code {
			mark = "●"
		}
		filled := 0
		if spec.CMax > 0 {
			filled = int(m.Total / spec.CMax * float64(barW))
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Background(t.Surface).
			Render(strings.Repeat("█", filled)) +
			dimStyle.Render(strings.Repeat("·", barW-filled))

		name := m.DisplayName
		if !m.Known {
			name += "?"
		}
		label := fmt.Sprintf("%s %-*s", mark, nameW, truncStr(name, nameW))
		style := rowStyle
		if i == a.maps.cursor {
			style = cursorStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString(dimStyle.Render(" "))
		b.WriteString(bar)
		b.WriteString(rowStyle.Render(fmt.Sprintf(" %*s", valueW, cli.FormatCurrency(m.Total))))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(spec.Layout.ColorBarTitle + ": " +
		cli.FormatCurrency(spec.CMin) + " – " + cli.FormatCurrency(spec.CMax)))

	return components.ContentCard("Regions", b.String(), width)
}

// renderRegionDetail is the side panel for the selected region.
func (a App) renderRegionDetail(width int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	m, ok := a.maps.selection.Selected()
	if !ok {
		return components.ContentCard("Region detail", muted.Render("Select a region with Enter to see its breakdown."), width)
	}

	lines := chart.DetailLines(m)
	nameStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	totalStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(nameStyle.Render(lines[0]))
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(lines[1]))
	b.WriteString("\n\n")
	for _, line := range lines[2:] {
		b.WriteString(muted.Render(line))
		b.WriteString("\n")
	}

	inner := components.CardInnerWidth(width)
	if m.Total > 0 && len(m.Breakdown) > 0 {
		b.WriteString("\n")
		labelW := min(16, inner/3)
		barW := max(6, inner-labelW-6)
		for k, item := range m.Breakdown {
			b.WriteString(components.ShareBar(item.Series, item.Value/m.Total,
				lipgloss.Color(a.style.ColorFor(k)), labelW, barW))
			b.WriteString("\n")
		}
	}
	return components.ContentCard("Region detail", strings.TrimRight(b.String(), "\n"), width)
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
