// Package region maps UK region codes to display names and map coordinates.
package region

import (
	"slices"
	"strings"
)

// Fallback coordinates for codes the registry does not know.
const (
	DefaultLatitude  = 52.0
	DefaultLongitude = 0.0
)

// Info describes one region marker.
type Info struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
}

var registry = map[string]Info{
	"EAST_MIDLANDS":    {"EAST_MIDLANDS", "East Midlands", 52.8, -1.0},
	"EAST_OF_ENGLAND":  {"EAST_OF_ENGLAND", "East of England", 52.2, 0.5},
	"LONDON":           {"LONDON", "London", 51.5, -0.1},
	"NORTHERN_IRELAND": {"NORTHERN_IRELAND", "Northern Ireland", 54.6, -6.5},
	"NORTH_EAST":       {"NORTH_EAST", "North East", 55.0, -1.6},
	"NORTH_WEST":       {"NORTH_WEST", "North West", 53.7, -2.7},
	"SCOTLAND":         {"SCOTLAND", "Scotland", 56.5, -4.0},
	"SOUTH_EAST":       {"SOUTH_EAST", "South East", 51.3, 0.0},
	"SOUTH_WEST":       {"SOUTH_WEST", "South West", 50.8, -3.5},
	"WALES":            {"WALES", "Wales", 52.3, -3.7},
	"WEST_MIDLANDS":    {"WEST_MIDLANDS", "West Midlands", 52.5, -2.0},
	"YORKSHIRE":        {"YORKSHIRE", "Yorkshire", 53.8, -1.3},
}

// Lookup returns the registered info for code.
func Lookup(code string) (Info, bool) {
	info, ok := registry[code]
	return info, ok
}

// Resolve returns the registered info for code, or a marker at the default
// coordinates labelled with the raw code.
func Resolve(code string) Info {
	if info, ok := registry[code]; ok {
		return info
	}
	return Info{
		Code:        code,
		DisplayName: code,
		Latitude:    DefaultLatitude,
		Longitude:   DefaultLongitude,
	}
}

// All returns every registered region ordered by code.
func All() []Info {
	out := make([]Info, 0, len(registry))
	for _, info := range registry {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Code, b.Code) })
	return out
}
