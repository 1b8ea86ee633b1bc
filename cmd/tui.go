package cmd

import (
	"fmt"

	"github.com/theirongolddev/spendviz/internal/config"
	"github.com/theirongolddev/spendviz/internal/tui"
	"github.com/theirongolddev/spendviz/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so background fills render even when lipgloss
	// would otherwise detect an Ascii profile.
	lipgloss.SetColorProfile(termenv.TrueColor)

	style, err := chartStyle(cfg)
	if err != nil {
		return err
	}
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	app := tui.NewApp(tui.Options{
		Fetcher: src.fetcher,
		Style:   style,
		Source:  src.description,
		Setup:   !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
