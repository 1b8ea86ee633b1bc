package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/pipeline"
	"github.com/theirongolddev/spendviz/internal/views"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load every dashboard panel and summarise its totals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	sections := views.DefaultSections()
	progressf("  Loading %d panels from %s...\n", len(views.AllPanels(sections)), src.description)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	results, err := views.LoadAll(ctx, src.fetcher, sections)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("UK PUBLIC SERVICES SPENDING"))
	fmt.Println()

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, summaryRow(r))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Panel", "Resource", "Status", "Categories", "Highest", "Time"},
		Rows:    rows,
	}))

	failures := views.Failures(results)
	for _, f := range failures {
		fmt.Fprintln(os.Stderr, cli.Errorf("  %s: %s", f.Panel.Title, f.Snapshot.Message))
	}
	progressf("\n  Loaded %d/%d panels in %s\n", len(results)-len(failures), len(results), time.Since(start).Round(time.Millisecond))

	if len(failures) == len(results) {
		return errors.New("no panel could be loaded; check --data-url or run `spendviz setup`")
	}
	return nil
}

func summaryRow(r views.PanelResult) []string {
	snap := r.Snapshot
	elapsed := snap.Elapsed.Round(time.Millisecond).String()
	if snap.State != loader.Loaded {
		return []string{r.Panel.Title, r.Panel.Resource, cli.RenderError(snap.State.String()), "-", "-", elapsed}
	}

	totals, err := pipeline.Aggregate(snap.Dataset)
	if err != nil {
		return []string{r.Panel.Title, r.Panel.Resource, cli.RenderError("invalid"), "-", "-", elapsed}
	}
	highest := "-"
	if sorted, err := pipeline.SortDescending(snap.Dataset); err == nil && len(sorted.Categories) > 0 {
		_, hi := pipeline.TotalRange(totals)
		highest = fmt.Sprintf("%s %s", sorted.Categories[0], cli.FormatCurrency(hi))
	}
	return []string{
		r.Panel.Title,
		r.Panel.Resource,
		cli.RenderOK("loaded"),
		cli.FormatNumber(int64(len(totals))),
		highest,
		elapsed,
	}
}
