package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/spendviz/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes", i)
		}
	}
}

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(10, 3)
	want := []int{4, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LayoutRow(10, 3) = %v, want %v", got, want)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow(10, 0) should be nil")
	}
}

func TestErrorCardShowsMessage(t *testing.T) {
	card := ErrorCard("Spending by Region", "Failed to load data: Not Found (by_region)", 60)
	plain := stripANSI(card)
	if !strings.Contains(plain, "Error loading data") || !strings.Contains(plain, "Not Found") {
		t.Fatalf("error card missing message:\n%s", plain)
	}
}

func TestStackedBarsScalesToLongestTotal(t *testing.T) {
	series := []BarSeries{
		{Name: "Health", Values: []float64{100, 200}, Color: "#4472C4"},
		{Name: "Education", Values: []float64{100, 0}, Color: "#ED7D31"},
	}
	out := stripANSI(StackedBars([]string{"A", "B"}, series, 60))
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5 (2 bars, axis, ticks, legend):\n%s", len(lines), out)
	}
	a := strings.Count(lines[0], "█")
	b := strings.Count(lines[1], "█")
	if a != b {
		t.Fatalf("equal totals drew %d and %d blocks", a, b)
	}
	if !strings.Contains(lines[4], "Health") || !strings.Contains(lines[4], "Education") {
		t.Fatalf("legend = %q", lines[4])
	}
}

func TestStackedBarsSingleSeriesHasNoLegend(t *testing.T) {
	series := []BarSeries{{Name: "NHS", Values: []float64{5}, Color: "#4472C4"}}
	out := stripANSI(StackedBars([]string{"A"}, series, 40))
	if strings.Contains(out, "NHS") {
		t.Fatalf("single series should not render a legend:\n%s", out)
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "£0"},
		{500, "£500"},
		{2000, "£2k"},
		{2500, "£2.5k"},
		{3e6, "£3M"},
		{0.5, "£0.50"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Fatalf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey("2", 5); got != 1 {
		t.Fatalf("TabIdxByKey(2) = %d, want 1", got)
	}
	if got := TabIdxByKey("9", 5); got != -1 {
		t.Fatalf("TabIdxByKey(9) = %d, want -1", got)
	}
	if got := TabIdxByKey("x", 5); got != -1 {
		t.Fatalf("TabIdxByKey(x) = %d, want -1", got)
	}
}

func TestRenderTabBarDropsHintsWhenNarrow(t *testing.T) {
	names := []string{"Demographics", "Household", "NHS"}

	wide := stripANSI(RenderTabBar(names, 0, 120))
	if !strings.Contains(wide, "Household[2]") {
		t.Fatalf("wide bar should carry shortcut hints: %q", wide)
	}

	need := len(names) - 1
	for i, n := range names {
		need += TabVisualWidth(n, i, i == 0)
	}
	narrow := stripANSI(RenderTabBar(names, 0, need-1))
	if strings.Contains(narrow, "[") {
		t.Fatalf("narrow bar should drop shortcut hints: %q", narrow)
	}
}

func TestMetricCardRowShowsTrend(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "By Region", Value: "£8.3K", Note: "3 categories", Trend: []float64{1, 4, 8}},
		{Label: "By Decile", Value: "£2.0K"},
	}, 60)
	plain := stripANSI(row)
	for _, want := range []string{"By Region", "£8.3K", "3 categories", "█", "By Decile"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("metric row missing %q:\n%s", want, plain)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
