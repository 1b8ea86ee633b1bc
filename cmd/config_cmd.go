// Package cmd implements the spendviz CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/spendviz/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Data]")
	fmt.Printf("    Base URL:   %s\n", config.DataURL(cfg))
	if cfg.Data.Dir != "" {
		fmt.Printf("    Directory:  %s\n", cfg.Data.Dir)
	}
	if cfg.Data.SnapshotDB != "" {
		fmt.Printf("    Snapshot:   %s\n", cfg.Data.SnapshotDB)
	}
	fmt.Printf("    Timeout:    %s\n", config.Timeout(cfg))
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:    %s\n", cfg.Server.Addr)
	fmt.Printf("    Log level:  %s\n", cfg.Server.LogLevel)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:      %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Palette:    %s\n", cfg.Appearance.Palette)
	if len(cfg.Appearance.Colors) > 0 {
		fmt.Printf("    Colors:     %s\n", strings.Join(cfg.Appearance.Colors, ", "))
	}
	fmt.Println()

	fmt.Println("  [Chart]")
	fmt.Printf("    Compact:     %v\n", cfg.Chart.Compact)
	if cfg.Chart.LeftMargin != nil {
		fmt.Printf("    Left margin: %dpx\n", *cfg.Chart.LeftMargin)
	} else {
		fmt.Println("    Left margin: auto")
	}
	fmt.Println()

	if err := config.Validate(cfg); err != nil {
		fmt.Printf("  Invalid: %v\n\n", err)
	}
	fmt.Println("  Run `spendviz setup` to reconfigure.")
	return nil
}
