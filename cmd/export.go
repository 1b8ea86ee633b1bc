package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/export"
	"github.com/theirongolddev/spendviz/internal/views"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var flagExportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [resources...]",
	Short: "Write datasets and their totals to an Excel workbook",
	Long:  "Write one sheet per dataset plus a totals summary. Defaults to every dashboard dataset.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "spending.xlsx", "Workbook path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if !strings.HasSuffix(strings.ToLower(flagExportOutput), ".xlsx") {
		return fmt.Errorf("output %q must end in .xlsx", flagExportOutput)
	}

	sections := views.DefaultSections()
	names := args
	if len(names) == 0 {
		names = views.ResourceNames(sections)
	}

	cfg := loadConfig()
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	wb, err := export.NewWorkbook()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !flagQuiet {
		bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetDescription("Exporting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, name := range names {
		title := name
		if p, ok := views.FindPanel(sections, name); ok {
			title = p.Title
		}
		ds, err := src.fetcher.Fetch(cmd.Context(), name)
		if err == nil {
			err = wb.Add(export.Sheet{Name: name, Title: title, Dataset: ds})
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := wb.SaveAs(flagExportOutput); err != nil {
		return err
	}
	size := int64(0)
	if fi, err := os.Stat(flagExportOutput); err == nil {
		size = fi.Size()
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("  Wrote %s (%d sheets, %s)",
		flagExportOutput, len(wb.SheetNames()), cli.FormatBytes(size))))
	return nil
}
