package tui

import (
	"slices"
	"strings"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/tui/components"
	"github.com/theirongolddev/spendviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// renderSectionTab lays out the active section's bar panels, two per row
// on wide terminals.
func (a App) renderSectionTab(cw int) string {
	t := theme.Active
	sec := a.sections[a.activeTab]

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).Width(cw - 2)

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(sec.Title))
	b.WriteString("\n")
	if sec.Description != "" {
		b.WriteString(" " + descStyle.Render(sec.Description))
		b.WriteString("\n")
	}

	idxs := a.sectionP[a.activeTab]
	if metrics := a.sectionMetrics(idxs); len(metrics) > 0 {
		b.WriteString(components.MetricCardRow(metrics, cw))
		b.WriteString("\n")
	}

	perRow := 2
	if a.isCompactLayout() || len(idxs) == 1 {
		perRow = 1
	}
	for start := 0; start < len(idxs); start += perRow {
		end := min(start+perRow, len(idxs))
		widths := components.LayoutRow(cw, end-start)
		cards := make([]string, 0, end-start)
		for j, idx := range idxs[start:end] {
			cards = append(cards, a.renderPanel(a.panels[idx], widths[j]))
		}
		b.WriteString(components.CardRow(cards))
		b.WriteString("\n")
	}
	return b.String()
}

// sectionMetrics summarises each loaded panel: its grand total, category
// count and a sparkline of category totals.
func (a App) sectionMetrics(idxs []int) []components.Metric {
	var out []components.Metric
	for _, idx := range idxs {
		p := a.panels[idx]
		if p.state() != loader.Loaded || p.err != nil || len(p.spec.Series) == 0 {
			continue
		}
		totals := categoryTotals(p.spec)
		var grand float64
		for _, v := range totals {
			grand += v
		}
		out = append(out, components.Metric{
			Label: p.panel.Title,
			Value: cli.FormatCompactCurrency(grand),
			Note:  cli.FormatNumber(int64(len(totals))) + " categories",
			Trend: totals,
		})
	}
	return out
}

// categoryTotals sums the series at each category in spec order.
func categoryTotals(spec chart.Spec) []float64 {
	if len(spec.Series) == 0 {
		return nil
	}
	totals := make([]float64, len(spec.Series[0].Categories))
	for _, s := range spec.Series {
		for i, v := range s.Values {
			totals[i] += v
		}
	}
	return totals
}

// renderPanel draws one panel in whichever state its loader is in.
func (a App) renderPanel(p panelView, width int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	snap := p.loader.Snapshot()
	switch snap.State {
	case loader.Idle, loader.Loading:
		spin := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render(a.spinner.View())
		return components.ContentCard(p.panel.Title, spin+muted.Render(" Loading "+p.panel.Resource+"..."), width)
	case loader.Failed:
		return components.ErrorCard(p.panel.Title, snap.Message, width)
	}
	if p.err != nil {
		return components.ErrorCard(p.panel.Title, p.err.Error(), width)
	}

	cats, series := barRows(p.spec)
	body := components.StackedBars(cats, series, components.CardInnerWidth(width))
	if footer := panelFooter(p.spec); footer != "" {
		body += "\n" + muted.Render(footer)
	}
	return components.ContentCard(p.panel.Title, body, width)
}

// barRows converts a chart spec into terminal rows. Horizontal charts put
// their first category at the bottom, so rows are reversed to match.
func barRows(spec chart.Spec) ([]string, []components.BarSeries) {
	if len(spec.Series) == 0 {
		return nil, nil
	}
	cats := slices.Clone(spec.Series[0].Categories)
	series := make([]components.BarSeries, len(spec.Series))
	for k, s := range spec.Series {
		series[k] = components.BarSeries{
			Name:   s.Name,
			Values: slices.Clone(s.Values),
			Color:  lipgloss.Color(s.Color),
		}
	}
	if spec.Series[0].Orientation == chart.Horizontal {
		slices.Reverse(cats)
		for k := range series {
			slices.Reverse(series[k].Values)
		}
	}
	return cats, series
}

// panelFooter names the category with the highest total.
func panelFooter(spec chart.Spec) string {
	if len(spec.Series) == 0 {
		return ""
	}
	var top string
	var best float64
	totals := categoryTotals(spec)
	for i, cat := range spec.Series[0].Categories {
		total := totals[i]
		if top == "" || total > best {
			top, best = cat, total
		}
	}
	if top == "" {
		return ""
	}
	return "Highest: " + top + " " + cli.FormatCurrency(best)
}
