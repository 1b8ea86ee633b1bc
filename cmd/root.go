package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/config"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDataURL  string
	flagDataDir  string
	flagSnapshot string
	flagQuiet    bool
	flagPalette  string
)

var rootCmd = &cobra.Command{
	Use:           "spendviz",
	Short:         "UK public services spending dashboard",
	Long:          "Explore how UK public services spending is distributed across income deciles, regions, age groups and household types.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataURL, "data-url", "u", "", "Base URL serving /data/<name>.json (default from config or $"+config.EnvDataURL+")")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Read datasets from a local directory instead of HTTP")
	rootCmd.PersistentFlags().StringVar(&flagSnapshot, "snapshot", "", "Read datasets from a SQLite snapshot database")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagPalette, "palette", "", "Chart palette: default or teal")
}

// loadConfig returns the config file contents, falling back to defaults
// when the file is unreadable.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Config unreadable (%v), using defaults\n", err)
		}
		return config.DefaultConfig()
	}
	return cfg
}

// dataSource is the fetcher selected by flags and config.
type dataSource struct {
	fetcher     loader.Fetcher
	description string
	close       func() error
}

func (d dataSource) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

// openSource picks where datasets come from. Flags win over config; within
// each, a snapshot beats a directory which beats HTTP.
func openSource(cfg config.Config) (dataSource, error) {
	switch {
	case flagSnapshot != "":
		return openSnapshot(flagSnapshot)
	case flagDataDir != "":
		return dirSource(flagDataDir), nil
	case flagDataURL != "":
		return httpSource(flagDataURL, cfg), nil
	case cfg.Data.SnapshotDB != "":
		return openSnapshot(cfg.Data.SnapshotDB)
	case cfg.Data.Dir != "":
		return dirSource(cfg.Data.Dir), nil
	}
	return httpSource(config.DataURL(cfg), cfg), nil
}

func openSnapshot(path string) (dataSource, error) {
	st, err := store.Open(path)
	if err != nil {
		return dataSource{}, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	return dataSource{fetcher: st, description: "snapshot " + path, close: st.Close}, nil
}

func dirSource(dir string) dataSource {
	return dataSource{fetcher: loader.DirFetcher{Root: dir}, description: dir}
}

func httpSource(baseURL string, cfg config.Config) dataSource {
	return dataSource{fetcher: loader.NewHTTPFetcher(baseURL, config.Timeout(cfg)), description: baseURL}
}

// chartStyle resolves the palette, letting --palette replace the configured one.
func chartStyle(cfg config.Config) (chart.Style, error) {
	if flagPalette != "" {
		cfg.Appearance.Palette = flagPalette
		cfg.Appearance.Colors = nil
	}
	return config.Style(cfg)
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
