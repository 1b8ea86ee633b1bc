package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/spendviz/internal/model"
)

func TestLoadFrom_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Appearance.Palette != "default" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendviz", "config.toml")
	cfg := DefaultConfig()
	cfg.Data.Dir = "/srv/data"
	cfg.Appearance.Palette = "teal"
	margin := 200
	cfg.Chart.LeftMargin = &margin

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Data.Dir != "/srv/data" || got.Appearance.Palette != "teal" {
		t.Errorf("loaded = %+v", got)
	}
	if got.Chart.LeftMargin == nil || *got.Chart.LeftMargin != 200 {
		t.Errorf("LeftMargin = %v, want 200", got.Chart.LeftMargin)
	}
}

func TestLoadFrom_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Data.TimeoutSec != 10 {
		t.Fatalf("cfg = %+v, want addr override with default timeout", cfg)
	}
}

func TestDataURL_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv(EnvDataURL, "https://example.org")
	if got := DataURL(cfg); got != "https://example.org" {
		t.Fatalf("DataURL = %q", got)
	}
}

func TestStyle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Appearance.Palette = "teal"
	s, err := Style(cfg)
	if err != nil || s.Palette[0] != "#319795" {
		t.Fatalf("Style(teal) = %v, %v", s.Palette, err)
	}

	cfg.Appearance.Colors = []string{"#000000"}
	s, err = Style(cfg)
	if err != nil || len(s.Palette) != 1 {
		t.Fatalf("Style(custom) = %v, %v", s.Palette, err)
	}

	cfg.Appearance.Colors = []string{"blue"}
	if _, err := Style(cfg); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Style(bad colour) err = %v", err)
	}

	cfg = DefaultConfig()
	cfg.Appearance.Palette = "sepia"
	if err := Validate(cfg); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("Validate(unknown palette) err = %v", err)
	}
}
