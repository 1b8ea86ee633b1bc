package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagTotalsDesc bool
	flagTotalsSort bool
)

var totalsCmd = &cobra.Command{
	Use:   "totals <resource>",
	Short: "Per-category totals and series breakdown for one dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runTotals,
}

func init() {
	totalsCmd.Flags().BoolVar(&flagTotalsSort, "sort", false, "Order categories by ascending total")
	totalsCmd.Flags().BoolVar(&flagTotalsDesc, "desc", false, "Order categories by descending total")
	rootCmd.AddCommand(totalsCmd)
}

func runTotals(cmd *cobra.Command, args []string) error {
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

	ds, err := src.fetcher.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	switch {
	case flagTotalsDesc:
		ds, err = pipeline.SortDescending(ds)
	case flagTotalsSort:
		ds, err = pipeline.SortByTotal(ds)
	}
	if err != nil {
		return err
	}

	totals, err := pipeline.Aggregate(ds)
	if err != nil {
		return err
	}
	seriesTotals, err := pipeline.SeriesTotals(ds)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %d categories", args[0], len(totals))))
	if len(totals) > 1 {
		trend := make([]float64, len(totals))
		for i, ct := range totals {
			trend[i] = ct.Total
		}
		fmt.Println("  " + cli.RenderSparkline(trend))
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(totalsTable(ds, totals, seriesTotals)))
	fmt.Println()

	colors := make([]string, len(ds.Series))
	for k := range ds.Series {
		colors[k] = style.ColorFor(k)
	}
	_, hi := pipeline.TotalRange(totals)
	labelW := 0
	for _, c := range ds.Categories {
		labelW = max(labelW, len(c))
	}
	labelW = min(labelW, 24)
	for _, ct := range totals {
		values := make([]float64, len(ct.Order))
		for k, name := range ct.Order {
			values[k] = ct.Breakdown[name]
		}
		fmt.Println("  " + cli.RenderStackedBar(ct.Category, labelW, values, colors, hi, 40) + " " + cli.FormatCurrency(ct.Total))
	}
	fmt.Println()
	fmt.Println("  " + cli.RenderLegend(ds.SeriesNames(), colors))
	fmt.Println()
	return nil
}

func totalsTable(ds model.Dataset, totals []model.CategoryTotal, seriesTotals []pipeline.SeriesTotal) cli.Table {
	headers := append([]string{"Category"}, ds.SeriesNames()...)
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(totals)+2)
	for _, ct := range totals {
		row := []string{ct.Category}
		for _, name := range ct.Order {
			row = append(row, cli.FormatCurrency(ct.Breakdown[name]))
		}
		rows = append(rows, append(row, cli.FormatCurrency(ct.Total)))
	}

	rows = append(rows, []string{"---"})
	grand := 0.0
	footer := []string{"All categories"}
	for _, st := range seriesTotals {
		footer = append(footer, fmt.Sprintf("%s (%s)", cli.FormatCurrency(st.Total), cli.FormatPercent(st.Share)))
		grand += st.Total
	}
	rows = append(rows, append(footer, cli.FormatCurrency(grand)))

	return cli.Table{Headers: headers, Rows: rows}
}
