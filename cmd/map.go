package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/render"
	"github.com/theirongolddev/spendviz/internal/web"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	flagMapSelect string
	flagMapFormat string
	flagMapOutput string
	flagMapFull   bool
	flagMapWidth  int
	flagMapHeight int
)

var mapCmd = &cobra.Command{
	Use:   "map [resource]",
	Short: "Region bubble map of total spending",
	Long:  "Build the region map for a region-keyed dataset (default by_region).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMap,
}

func init() {
	f := mapCmd.Flags()
	f.StringVar(&flagMapSelect, "select", "", "Show the breakdown for one region code")
	f.StringVarP(&flagMapFormat, "format", "f", "text", "Output format: text, json, html, png, svg, pdf, jpg")
	f.StringVarP(&flagMapOutput, "output", "o", "", "Output file (default stdout)")
	f.BoolVar(&flagMapFull, "full", false, "Full-size layout with logo")
	f.IntVar(&flagMapWidth, "width", 0, "Image width in pixels")
	f.IntVar(&flagMapHeight, "height", 0, "Image height in pixels")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	resource := "by_region"
	if len(args) == 1 {
		resource = args[0]
	}

	cfg := loadConfig()
	style, err := chartStyle(cfg)
	if err != nil {
		return err
	}
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	ds, err := src.fetcher.Fetch(cmd.Context(), resource)
	if err != nil {
		return err
	}
	const title = "Public Services Spending by Region"
	spec, err := chart.BuildMap(ds, chart.MapOptions{Title: title, Compact: !flagMapFull, Style: style})
	if err != nil {
		return err
	}

	sel := chart.NewSelection(spec)
	if flagMapSelect != "" {
		if err := selectRegion(sel, spec, flagMapSelect); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	switch flagMapFormat {
	case "text":
		renderMapText(&buf, title, spec, sel)
	case "json":
		if m, ok := sel.Selected(); ok {
			err = writeJSON(&buf, struct {
				Marker chart.Marker `json:"marker"`
				Lines  []string     `json:"lines"`
			}{m, chart.DetailLines(m)})
		} else {
			err = writeJSON(&buf, spec)
		}
	case "html":
		err = web.WriteMapPage(&buf, spec, title, style)
	default:
		err = render.WriteMap(&buf, spec, flagMapFormat, render.Size{Width: flagMapWidth, Height: flagMapHeight})
	}
	if err != nil {
		return err
	}
	return writeOutput(flagMapOutput, buf.Bytes())
}

// selectRegion selects code as given, falling back to its upper-case form so
// "london" finds LONDON while raw lower-case codes stay reachable.
func selectRegion(sel *chart.Selection, spec chart.MapSpec, code string) error {
	if _, ok := sel.Select(code); ok {
		return nil
	}
	if _, ok := sel.Select(strings.ToUpper(code)); ok {
		return nil
	}
	codes := make([]string, len(spec.Markers))
	for i, m := range spec.Markers {
		codes[i] = m.Code
	}
	return fmt.Errorf("region %q is not on the map (have %s)", code, strings.Join(codes, ", "))
}

func renderMapText(buf *bytes.Buffer, title string, spec chart.MapSpec, sel *chart.Selection) {
	rows := make([][]string, len(spec.Markers))
	for i, m := range spec.Markers {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Render("●")
		name := m.DisplayName
		if !m.Known {
			name = cli.RenderMuted(name + " (unknown region)")
		}
		rows[i] = []string{swatch + " " + name, m.Code, cli.FormatCurrency(m.Total), fmt.Sprintf("%.1f", m.Size)}
	}

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, cli.RenderTitle(strings.ToUpper(title)))
	fmt.Fprintln(buf)
	buf.WriteString(cli.RenderTable(cli.Table{
		Headers: []string{"Region", "Code", "Total", "Size"},
		Rows:    rows,
	}))
	fmt.Fprintf(buf, "\n  Scale %s – %s\n", cli.FormatCurrency(spec.CMin), cli.FormatCurrency(spec.CMax))

	if m, ok := sel.Selected(); ok {
		lines := chart.DetailLines(m)
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "  "+lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintln(buf, "    "+l)
		}
	}
	fmt.Fprintln(buf)
}
