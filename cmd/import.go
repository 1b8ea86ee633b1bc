package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/store"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var flagImportDB string

var importCmd = &cobra.Command{
	Use:   "import <dir> [resources...]",
	Short: "Store dataset files from a directory in a SQLite snapshot",
	Long: "Validate every <name>.json in <dir> (or only the named resources) and store it in\n" +
		"the snapshot database, replacing older copies. Use --snapshot to read from it later.",
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagImportDB, "db", "", "Snapshot database path (default "+store.DefaultPath()+")")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	src := loader.DirFetcher{Root: dir}

	names := args[1:]
	if len(names) == 0 {
		var err error
		names, err = src.List()
		if err != nil {
			return fmt.Errorf("listing %s: %w", dir, err)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no .json datasets in %s", dir)
	}

	dbPath := flagImportDB
	if dbPath == "" {
		dbPath = store.DefaultPath()
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var bar *progressbar.ProgressBar
	if !flagQuiet {
		bar = progressbar.NewOptions(len(names),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	source, _ := filepath.Abs(dir)
	var failed []error
	imported := 0
	for _, name := range names {
		ds, err := src.Fetch(cmd.Context(), name)
		if err == nil {
			err = st.Save(cmd.Context(), name, ds, source)
		}
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", name, err))
		} else {
			imported++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	for _, err := range failed {
		fmt.Fprintln(os.Stderr, cli.Errorf("  %v", err))
	}

	size := int64(0)
	if fi, err := os.Stat(dbPath); err == nil {
		size = fi.Size()
	}
	fmt.Println(cli.RenderOK(fmt.Sprintf("  Imported %d of %d datasets into %s (%s)",
		imported, len(names), dbPath, cli.FormatBytes(size))))

	if imported == 0 {
		return errors.Join(failed...)
	}
	return nil
}
