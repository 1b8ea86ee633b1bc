// Package config loads and saves spendviz settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/model"
)

// EnvDataURL overrides [data].base_url when set.
const EnvDataURL = "SPENDVIZ_DATA_URL"

// Config holds all spendviz configuration.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Chart      ChartConfig      `toml:"chart"`
}

// DataConfig selects where datasets come from. The first non-empty of
// snapshot_db, dir and base_url wins, unless overridden by flags.
type DataConfig struct {
	BaseURL    string `toml:"base_url,omitempty"`
	Dir        string `toml:"dir,omitempty"`
	SnapshotDB string `toml:"snapshot_db,omitempty"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ServerConfig holds the dashboard server settings.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	LogLevel string `toml:"log_level"`
}

// AppearanceConfig holds theme and palette settings.
type AppearanceConfig struct {
	Theme    string   `toml:"theme"`
	Palette  string   `toml:"palette"`
	Colors   []string `toml:"colors,omitempty"`
	LightBG  string   `toml:"light_bg,omitempty"`
	DarkText string   `toml:"dark_text,omitempty"`
}

// ChartConfig holds chart defaults.
type ChartConfig struct {
	Compact    bool `toml:"compact"`
	LeftMargin *int `toml:"left_margin,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			BaseURL:    "http://localhost:3000",
			TimeoutSec: 10,
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			LogLevel: "info",
		},
		Appearance: AppearanceConfig{
			Theme:   "flexoki-dark",
			Palette: "default",
		},
		Chart: ChartConfig{
			Compact: true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendviz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spendviz")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataURL returns the data base URL from env var or config, in that order.
func DataURL(cfg Config) string {
	if u := strings.TrimSpace(os.Getenv(EnvDataURL)); u != "" {
		return u
	}
	return cfg.Data.BaseURL
}

// Timeout returns the per-fetch timeout.
func Timeout(cfg Config) time.Duration {
	if cfg.Data.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.Data.TimeoutSec) * time.Second
}

// Style resolves the chart style from appearance settings. Custom colours
// replace the named palette; an unknown palette name is an error.
func Style(cfg Config) (chart.Style, error) {
	style, err := chart.StyleByName(cfg.Appearance.Palette)
	if err != nil {
		return chart.Style{}, err
	}
	if len(cfg.Appearance.Colors) > 0 {
		style.Palette = append([]string(nil), cfg.Appearance.Colors...)
	}
	if cfg.Appearance.LightBG != "" {
		style.LightBG = cfg.Appearance.LightBG
	}
	if cfg.Appearance.DarkText != "" {
		style.DarkText = cfg.Appearance.DarkText
	}
	if err := style.Validate(); err != nil {
		return chart.Style{}, err
	}
	return style, nil
}

// Validate checks settings that would otherwise fail later.
func Validate(cfg Config) error {
	if cfg.Chart.LeftMargin != nil && *cfg.Chart.LeftMargin < 0 {
		return &model.ConfigError{Field: "chart.left_margin", Reason: "must not be negative"}
	}
	if cfg.Data.TimeoutSec < 0 {
		return &model.ConfigError{Field: "data.timeout_sec", Reason: "must not be negative"}
	}
	_, err := Style(cfg)
	return err
}
