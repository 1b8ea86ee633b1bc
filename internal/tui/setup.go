package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/spendviz/internal/config"
	"github.com/theirongolddev/spendviz/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	DataURL string
	Theme   string
	Palette string
	Compact bool
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		DataURL: cfg.Data.BaseURL,
		Theme:   cfg.Appearance.Theme,
		Palette: cfg.Appearance.Palette,
		Compact: cfg.Chart.Compact,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.Data.BaseURL = strings.TrimRight(strings.TrimSpace(v.DataURL), "/")
	cfg.Appearance.Theme = v.Theme
	cfg.Appearance.Palette = v.Palette
	cfg.Chart.Compact = v.Compact
}

func validateDataURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http(s) URL such as http://localhost:3000")
	}
	return nil
}

// NewSetupForm builds the first-run form. Answers are written to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themes := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to spendviz").
				Description("A few settings for the public services spending dashboard.\nYou can change them later with `spendviz setup`."),
			huh.NewInput().
				Title("Data server URL").
				Description("Where the dataset files are served from (/data/<name>.json).").
				Placeholder("http://localhost:3000").
				Validate(validateDataURL).
				Value(&vals.DataURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Terminal theme").
				Options(themes...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Chart palette").
				Options(
					huh.NewOption("Default (blue, orange, red, teal)", "default"),
					huh.NewOption("Teal", "teal"),
				).
				Value(&vals.Palette),
			huh.NewConfirm().
				Title("Compact charts?").
				Description("Smaller fonts and margins, no axis titles.").
				Value(&vals.Compact),
		),
	).WithShowHelp(true)
}

// saveSetupConfig persists the form answers and applies the theme.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	a.setupVals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	return config.Save(cfg)
}
