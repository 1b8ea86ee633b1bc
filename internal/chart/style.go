// Package chart turns spending datasets into renderer-neutral chart and map
// specifications. The layout fields mirror the plotly.js vocabulary so a
// Spec can be handed to a browser unchanged.
package chart

import (
	"fmt"
	"regexp"

	"github.com/theirongolddev/spendviz/internal/model"
)

// Palettes shipped with the dashboard.
var (
	// DefaultPalette matches the series order NHS, Education, Rail subsidy, Bus subsidy.
	DefaultPalette = []string{"#4472C4", "#ED7D31", "#E06666", "#4BACC6"}
	TealPalette    = []string{"#319795", "#2C7A7B", "#81E6D9", "#4FD1C5"}
)

// Brand assets and text, referenced by URL only.
const (
	LogoURL    = "https://raw.githubusercontent.com/PolicyEngine/policyengine-app/master/src/images/logos/policyengine/blue.png"
	SourceText = "Source: PolicyEngine UK tax-benefit microsimulation model, NHS Digital, ONS"
)

// Style carries the visual constants used when building charts.
type Style struct {
	Palette    []string `json:"palette"`
	LightBG    string   `json:"light_bg"`
	DarkText   string   `json:"dark_text"`
	GridColor  string   `json:"grid_color"`
	FontFamily string   `json:"font_family"`
	SourceText string   `json:"source_text"`
	LogoURL    string   `json:"logo_url"`
}

// DefaultStyle returns the dashboard's blue/orange style.
func DefaultStyle() Style {
	return Style{
		Palette:    append([]string(nil), DefaultPalette...),
		LightBG:    "#FFFFFF",
		DarkText:   "#1D4044",
		GridColor:  "#E5E5E5",
		FontFamily: "Roboto",
		SourceText: SourceText,
		LogoURL:    LogoURL,
	}
}

// TealStyle returns the default style with the teal palette.
func TealStyle() Style {
	s := DefaultStyle()
	s.Palette = append([]string(nil), TealPalette...)
	return s
}

// StyleByName resolves "default" or "teal".
func StyleByName(name string) (Style, error) {
	switch name {
	case "", "default":
		return DefaultStyle(), nil
	case "teal":
		return TealStyle(), nil
	}
	return Style{}, &model.ConfigError{Field: "palette", Reason: fmt.Sprintf("unknown palette %q", name)}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Validate reports an empty palette or malformed colours.
func (s Style) Validate() error {
	if len(s.Palette) == 0 {
		return &model.ConfigError{Field: "palette", Reason: "palette is empty"}
	}
	for _, c := range s.Palette {
		if !hexColor.MatchString(c) {
			return &model.ConfigError{Field: "palette", Reason: fmt.Sprintf("%q is not a hex colour", c)}
		}
	}
	return nil
}

// ColorFor returns the palette colour for series index k, cycling.
func (s Style) ColorFor(k int) string {
	return s.Palette[k%len(s.Palette)]
}
