package cli

import (
	"math"
	"strings"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "£0"},
		{999.4, "£999"},
		{1234567.4, "£1,234,567"},
		{1999.5, "£2,000"},
		{-2500, "-£2,500"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCurrency2(t *testing.T) {
	if got, want := FormatCurrency2(1234.5), "£1,234.50"; got != want {
		t.Errorf("FormatCurrency2 = %q, want %q", got, want)
	}
}

func TestFormatCompactCurrency(t *testing.T) {
	tests := map[float64]string{
		500:       "£500",
		12500:     "£12.5K",
		3_400_000: "£3.4M",
	}
	for in, want := range tests {
		if got := FormatCompactCurrency(in); got != want {
			t.Errorf("FormatCompactCurrency(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-1000); got != "-1,000" {
		t.Errorf("FormatNumber(-1000) = %q", got)
	}
	if got := FormatNumber(math.MinInt64); got != "-9,223,372,036,854,775,808" {
		t.Errorf("FormatNumber(MinInt64) = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(2048); got != "2.0 kB" {
		t.Errorf("FormatBytes(2048) = %q, want 2.0 kB", got)
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Region", "Total"},
		Rows:    [][]string{{"London", "£1,000"}, {"---"}, {"Wales", "£20"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "London") || !strings.Contains(out, "£1,000") {
		t.Fatalf("table missing cells:\n%s", out)
	}
}

func TestRenderStackedBar_FullWidth(t *testing.T) {
	out := RenderStackedBar("A", 3, []float64{1, 1}, []string{"#4472C4", "#ED7D31"}, 2, 10)
	if n := strings.Count(out, "█"); n != 10 {
		t.Fatalf("bar has %d blocks, want 10: %q", n, out)
	}
}
