package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List datasets stored in the snapshot database",
	Args:  cobra.NoArgs,
	RunE:  runSnapshots,
}

var snapshotsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsRm,
}

func init() {
	snapshotsCmd.PersistentFlags().StringVar(&flagImportDB, "db", "", "Snapshot database path (default "+store.DefaultPath()+")")
	snapshotsCmd.AddCommand(snapshotsRmCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func snapshotDBPath() string {
	switch {
	case flagImportDB != "":
		return flagImportDB
	case flagSnapshot != "":
		return flagSnapshot
	}
	return store.DefaultPath()
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	path := snapshotDBPath()
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	entries, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(cli.RenderMuted("  No datasets in " + path + ". Run `spendviz import <dir>` first."))
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Name,
			strconv.Itoa(e.Categories),
			strconv.Itoa(e.Series),
			humanize.Time(e.ImportedAt),
			e.Source,
		}
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   path,
		Headers: []string{"Name", "Categories", "Series", "Imported", "Source"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runSnapshotsRm(cmd *cobra.Command, args []string) error {
	st, err := store.Open(snapshotDBPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Println(cli.RenderOK("  Removed " + args[0]))
	return nil
}
