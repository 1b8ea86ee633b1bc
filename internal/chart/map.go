package chart

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/pipeline"
	"github.com/theirongolddev/spendviz/internal/region"
)

// MarkerSizeScale divides a region total to get its marker size.
const MarkerSizeScale = 100.0

// ColorStop is one stop of a continuous colour scale.
type ColorStop struct {
	Pos   float64 `json:"pos"`
	Color string  `json:"color"`
}

// SpendingScale runs from light to dark teal.
var SpendingScale = []ColorStop{
	{0, "#E8F4F8"},
	{0.5, "#4BACC6"},
	{1, "#1D4044"},
}

// MapOptions controls map building.
type MapOptions struct {
	Title   string
	Compact bool
	Style   Style
}

// BreakdownItem is one series value at a region.
type BreakdownItem struct {
	Series string  `json:"series"`
	Value  float64 `json:"value"`
}

// Marker is one region bubble.
type Marker struct {
	Code        string          `json:"code"`
	DisplayName string          `json:"name"`
	Latitude    float64         `json:"lat"`
	Longitude   float64         `json:"lon"`
	Total       float64         `json:"total"`
	Breakdown   []BreakdownItem `json:"breakdown"`
	Size        float64         `json:"size"`
	Color       string          `json:"color"`
	Known       bool            `json:"known"`
}

// GeoLayout fixes the map viewport on the British Isles.
type GeoLayout struct {
	Scope           string     `json:"scope"`
	CenterLon       float64    `json:"center_lon"`
	CenterLat       float64    `json:"center_lat"`
	Projection      string     `json:"projection"`
	ProjectionScale float64    `json:"projection_scale"`
	LonRange        [2]float64 `json:"lon_range"`
	LatRange        [2]float64 `json:"lat_range"`
	LandColor       string     `json:"land_color"`
	OceanColor      string     `json:"ocean_color"`
	CountryColor    string     `json:"country_color"`
}

// MapLayout is the non-trace part of a map.
type MapLayout struct {
	Title         string    `json:"title,omitempty"`
	Font          Font      `json:"font"`
	Geo           GeoLayout `json:"geo"`
	Height        int       `json:"height"`
	Margin        Margin    `json:"margin"`
	Images        []Image   `json:"images"`
	ColorBarTitle string    `json:"colorbar_title"`
	BGColor       string    `json:"bgcolor"`
}

// MapSpec is a complete region bubble map.
type MapSpec struct {
	Markers       []Marker    `json:"markers"`
	ColorScale    []ColorStop `json:"colorscale"`
	CMin          float64     `json:"cmin"`
	CMax          float64     `json:"cmax"`
	HoverTemplate string      `json:"hovertemplate"`
	Layout        MapLayout   `json:"layout"`
}

// BuildMap turns a region-keyed dataset into bubble markers. Unknown codes
// are placed at the default coordinates and labelled with the raw code.
func BuildMap(ds model.Dataset, opts MapOptions) (MapSpec, error) {
	if err := ds.Validate(); err != nil {
		return MapSpec{}, err
	}
	totals, err := pipeline.Aggregate(ds)
	if err != nil {
		return MapSpec{}, err
	}
	lo, hi := pipeline.TotalRange(totals)

	markers := make([]Marker, len(totals))
	for i, ct := range totals {
		info := region.Resolve(ct.Category)
		_, known := region.Lookup(ct.Category)
		bd := make([]BreakdownItem, len(ct.Order))
		for j, name := range ct.Order {
			bd[j] = BreakdownItem{Series: name, Value: ct.Breakdown[name]}
		}
		markers[i] = Marker{
			Code:        ct.Category,
			DisplayName: info.DisplayName,
			Latitude:    info.Latitude,
			Longitude:   info.Longitude,
			Total:       ct.Total,
			Breakdown:   bd,
			Size:        ct.Total / MarkerSizeScale,
			Color:       ScaleColor(scalePos(ct.Total, lo, hi)),
			Known:       known,
		}
	}

	return MapSpec{
		Markers:       markers,
		ColorScale:    append([]ColorStop(nil), SpendingScale...),
		CMin:          lo,
		CMax:          hi,
		HoverTemplate: "<b>%{text}</b><br>Total: £%{marker.color:,.0f}<br><extra></extra>",
		Layout:        buildMapLayout(opts),
	}, nil
}

func buildMapLayout(opts MapOptions) MapLayout {
	style := opts.Style
	l := MapLayout{
		Font: Font{Family: style.FontFamily, Color: style.DarkText, Size: 12},
		Geo: GeoLayout{
			Scope:           "europe",
			CenterLon:       -2.5,
			CenterLat:       54.0,
			Projection:      "mercator",
			ProjectionScale: 3.5,
			LonRange:        [2]float64{-11, 3},
			LatRange:        [2]float64{49.5, 61},
			LandColor:       "#F0F0F0",
			OceanColor:      "#E3F2FD",
			CountryColor:    "#CCCCCC",
		},
		Height:        700,
		Margin:        Margin{T: 80, B: 40},
		Images:        []Image{},
		ColorBarTitle: "Total Spending (£)",
		BGColor:       style.LightBG,
	}
	if opts.Compact {
		l.Font.Size = 10
		l.Height = 500
		l.Margin = Margin{T: 40, B: 20}
		return l
	}
	l.Title = opts.Title
	l.Images = []Image{{
		Source: style.LogoURL, XRef: "paper", YRef: "paper",
		X: 1.0, Y: 0, SizeX: 0.15, SizeY: 0.15,
		XAnchor: "right", YAnchor: "bottom",
	}}
	return l
}

// scalePos maps v into [0,1] over [lo,hi]; a flat range maps to the midpoint.
func scalePos(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return math.Min(1, math.Max(0, (v-lo)/(hi-lo)))
}

// ScaleColor interpolates SpendingScale at t in [0,1] and returns a hex colour.
func ScaleColor(t float64) string {
	t = math.Min(1, math.Max(0, t))
	stops := SpendingScale
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Pos {
			a, b := stops[i-1], stops[i]
			f := (t - a.Pos) / (b.Pos - a.Pos)
			return lerpHex(a.Color, b.Color, f)
		}
	}
	return stops[len(stops)-1].Color
}

func lerpHex(a, b string, f float64) string {
	ar, ag, ab := parseHex(a)
	br, bg, bb := parseHex(b)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return fmt.Sprintf("#%02X%02X%02X", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// parseHex reads #RRGGBB; anything else is black.
func parseHex(s string) (r, g, b uint8) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Selection tracks the single region picked on a map. Selecting another
// region replaces it; Reset clears it when the underlying data reloads.
type Selection struct {
	mu       sync.RWMutex
	markers  map[string]Marker
	selected string
}

// NewSelection returns a selection over spec's markers.
func NewSelection(spec MapSpec) *Selection {
	s := &Selection{}
	s.Reset(spec)
	return s
}

// Reset swaps in a freshly built map and clears any selection.
func (s *Selection) Reset(spec MapSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = make(map[string]Marker, len(spec.Markers))
	for _, m := range spec.Markers {
		s.markers[m.Code] = m
	}
	s.selected = ""
}

// Select marks code as the selected region. It reports false and leaves
// the selection unchanged when the code is not on the map.
func (s *Selection) Select(code string) (Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[code]
	if !ok {
		return Marker{}, false
	}
	s.selected = code
	return m, true
}

// Clear removes the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

// Selected returns the selected marker, if any.
func (s *Selection) Selected() (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return Marker{}, false
	}
	m, ok := s.markers[s.selected]
	return m, ok
}

// DetailLines renders the side-panel breakdown for a marker with two
// decimal places.
func DetailLines(m Marker) []string {
	lines := make([]string, 0, len(m.Breakdown)+2)
	lines = append(lines, m.DisplayName)
	lines = append(lines, "Total Spending: "+cli.FormatCurrency2(m.Total))
	for _, b := range m.Breakdown {
		lines = append(lines, b.Series+": "+cli.FormatCurrency2(b.Value))
	}
	return lines
}
