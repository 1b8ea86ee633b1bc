package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/render"
	"github.com/theirongolddev/spendviz/internal/views"
	"github.com/theirongolddev/spendviz/internal/web"

	"github.com/spf13/cobra"
)

var (
	flagChartHorizontal bool
	flagChartCompact    bool
	flagChartSort       bool
	flagChartLeftMargin int
	flagChartFormat     string
	flagChartOutput     string
	flagChartWidth      int
	flagChartHeight     int
)

var chartCmd = &cobra.Command{
	Use:   "chart <resource|panel>",
	Short: "Build a stacked bar chart as JSON, HTML or an image",
	Long: "Build the stacked bar chart for a dataset. Options start from the matching dashboard\n" +
		"panel (if any) and are overridden by the flags given.",
	Args: cobra.ExactArgs(1),
	RunE: runChart,
}

func init() {
	f := chartCmd.Flags()
	f.BoolVar(&flagChartHorizontal, "horizontal", false, "Categories on the Y axis")
	f.BoolVar(&flagChartCompact, "compact", true, "Compact layout: smaller fonts, no titles")
	f.BoolVar(&flagChartSort, "sort", false, "Order categories by ascending total")
	f.IntVar(&flagChartLeftMargin, "left-margin", 0, "Left margin in pixels for horizontal charts")
	f.StringVarP(&flagChartFormat, "format", "f", "json", "Output format: json, html, png, svg, pdf, jpg")
	f.StringVarP(&flagChartOutput, "output", "o", "", "Output file (default stdout)")
	f.IntVar(&flagChartWidth, "width", 0, "Image width in pixels")
	f.IntVar(&flagChartHeight, "height", 0, "Image height in pixels (default from layout)")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	style, err := chartStyle(cfg)
	if err != nil {
		return err
	}

	panel, ok := views.FindPanel(views.DefaultSections(), args[0])
	if !ok {
		panel = views.Panel{ID: args[0], Title: args[0], Resource: args[0], Compact: cfg.Chart.Compact, LeftMargin: cfg.Chart.LeftMargin}
	}
	opts := panel.ChartOptions(style)

	flags := cmd.Flags()
	if flags.Changed("horizontal") {
		opts.Orientation = chart.Vertical
		if flagChartHorizontal {
			opts.Orientation = chart.Horizontal
		}
	}
	if flags.Changed("compact") {
		opts.Compact = flagChartCompact
	}
	if flags.Changed("sort") {
		opts.SortByTotal = flagChartSort
	}
	if flags.Changed("left-margin") {
		lm := flagChartLeftMargin
		opts.LeftMargin = &lm
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	ds, err := src.fetcher.Fetch(cmd.Context(), panel.Resource)
	if err != nil {
		return err
	}
	spec, err := chart.Build(ds, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch flagChartFormat {
	case "json":
		err = writeJSON(&buf, spec)
	case "html":
		err = web.WriteChartPage(&buf, spec, style)
	default:
		err = render.WriteBarChart(&buf, spec, flagChartFormat, render.Size{Width: flagChartWidth, Height: flagChartHeight})
	}
	if err != nil {
		return err
	}
	return writeOutput(flagChartOutput, buf.Bytes())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // output is meant to be readable
		return fmt.Errorf("writing %s: %w", path, err)
	}
	progressf("  Wrote %s\n", path)
	return nil
}
