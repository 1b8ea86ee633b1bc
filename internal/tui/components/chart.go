package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/spendviz/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// BarSeries is one stacked series in a terminal bar chart.
type BarSeries struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}
	return style.Render(buf.String())
}

// StackedBars renders one horizontal stacked bar per category, longest
// total filling the bar area, followed by a value axis and a legend.
// Categories are drawn top to bottom in the order given.
func StackedBars(categories []string, series []BarSeries, width int) string {
	if len(categories) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Active.TextDim).Background(theme.Active.Surface).Render("no categories")
	}
	t := theme.Active

	totals := make([]float64, len(categories))
	for _, s := range series {
		for i := range categories {
			if i < len(s.Values) {
				totals[i] += s.Values[i]
			}
		}
	}
	maxTotal := 0.0
	for _, v := range totals {
		maxTotal = math.Max(maxTotal, v)
	}
	step := chartTickStep(maxTotal)
	ceiling := math.Ceil(maxTotal/step) * step
	if ceiling <= 0 {
		ceiling = 1
	}

	labelW := 0
	for _, c := range categories {
		labelW = max(labelW, lipgloss.Width(c))
	}
	labelW = min(labelW, max(8, width/3))

	valueW := len(formatChartLabel(ceiling)) + 2
	barW := width - labelW - valueW - 2
	if barW < 10 {
		barW = 10
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	segStyles := make([]lipgloss.Style, len(series))
	for k, s := range series {
		segStyles[k] = lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface)
	}

	var b strings.Builder
	for i, cat := range categories {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(cat, labelW))))
		b.WriteString(axisStyle.Render("│"))

		// Cumulative rounding keeps the stacked length equal to the
		// rounded total regardless of how many segments there are.
		drawn, cum := 0, 0.0
		for k, s := range series {
			if i >= len(s.Values) || s.Values[i] <= 0 {
				continue
			}
			cum += s.Values[i]
			end := int(math.Round(cum / ceiling * float64(barW)))
			if end > drawn {
				b.WriteString(segStyles[k].Render(strings.Repeat("█", end-drawn)))
				drawn = end
			}
		}
		b.WriteString(space.Render(strings.Repeat(" ", barW-drawn+1)))
		b.WriteString(valueStyle.Render(formatChartLabel(totals[i])))
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", labelW) + "└" + strings.Repeat("─", barW)))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(axisTicks(ceiling, step, labelW+1, barW)))

	if len(series) > 1 {
		b.WriteString("\n")
		b.WriteString(Legend(series))
	}
	return b.String()
}

// axisTicks lays out value labels under the bar area.
func axisTicks(ceiling, step float64, indent, barW int) string {
	buf := []rune(strings.Repeat(" ", indent+barW+8))
	lastEnd := -1
	for v := 0.0; v <= ceiling+step/2; v += step {
		pos := indent + int(math.Round(v/ceiling*float64(barW)))
		lbl := []rune(formatChartLabel(v))
		if pos <= lastEnd || pos+len(lbl) > len(buf) {
			continue
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	return strings.TrimRight(string(buf), " ")
}

// Legend renders coloured series swatches on one line.
func Legend(series []BarSeries) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, len(series))
	for i, s := range series {
		sw := lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render("■")
		parts[i] = sw + space.Render(" ") + nameStyle.Render(s.Name)
	}
	return strings.Join(parts, space.Render("  "))
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders a compact pound amount for axis ticks.
func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		return "£" + trimZero(v/1e9) + "B"
	case v >= 1e6:
		return "£" + trimZero(v/1e6) + "M"
	case v >= 1e3:
		return "£" + trimZero(v/1e3) + "k"
	case v >= 1 || v == 0:
		return fmt.Sprintf("£%.0f", v)
	default:
		return fmt.Sprintf("£%.2f", v)
	}
}

func trimZero(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
