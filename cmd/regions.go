package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/region"

	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the known region codes and their map coordinates",
	Args:  cobra.NoArgs,
	RunE:  runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(_ *cobra.Command, _ []string) error {
	all := region.All()
	rows := make([][]string, len(all))
	for i, r := range all {
		rows[i] = []string{r.Code, r.DisplayName, fmt.Sprintf("%.1f", r.Latitude), fmt.Sprintf("%.1f", r.Longitude)}
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Code", "Name", "Lat", "Lon"},
		Rows:    rows,
	}))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  Unknown codes are placed at %.0f, %.0f and labelled with the raw code.", region.DefaultLatitude, region.DefaultLongitude)))
	return nil
}
