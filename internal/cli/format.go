// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency formats a pound value rounded to whole pounds with
// thousands separators, e.g. 1234567.4 -> "£1,234,567".
func FormatCurrency(v float64) string {
	return formatPounds(v, 0)
}

// FormatCurrency2 formats a pound value with two decimal places,
// e.g. 1234.5 -> "£1,234.50".
func FormatCurrency2(v float64) string {
	return formatPounds(v, 2)
}

func formatPounds(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "£-"
	}
	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(v*scale) / scale
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	// message.Printer is not safe for concurrent use, so each call gets its own.
	p := message.NewPrinter(language.BritishEnglish)
	return sign + "£" + p.Sprintf(fmt.Sprintf("%%.%df", decimals), rounded)
}

// FormatCompactCurrency abbreviates large pound values for axis labels,
// e.g. 12500 -> "£12.5K".
func FormatCompactCurrency(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%s£%.1fB", sign, abs/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%s£%.1fM", sign, abs/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s£%.1fK", sign, abs/1_000)
	default:
		return fmt.Sprintf("%s£%.0f", sign, abs)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatBytes renders a byte count for import and export summaries.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
