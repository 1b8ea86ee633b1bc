package chart

import (
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/pipeline"
)

// Orientation selects which axis carries the categories.
type Orientation int

const (
	Vertical   Orientation = iota // categories on X
	Horizontal                    // categories on Y
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "h"
	}
	return "v"
}

// Default left margins for horizontal charts, sized for long category labels.
const (
	HorizontalLeftMarginCompact = 150
	HorizontalLeftMarginFull    = 180
)

// Options controls how a dataset becomes a chart.
type Options struct {
	Title       string
	XAxisTitle  string // category axis title
	YAxisTitle  string // value axis title
	Orientation Orientation
	Compact     bool
	LeftMargin  *int // horizontal only; nil selects the default
	SortByTotal bool
	Style       Style
}

// Spec is a complete stacked bar chart description.
type Spec struct {
	Title  string      `json:"title"`
	Series []BarSeries `json:"data"`
	Layout Layout      `json:"layout"`
	Config Config      `json:"config"`
}

// BarSeries is one stacked series. Categories and Values are kept in
// category order regardless of orientation; MarshalJSON maps them onto x/y.
type BarSeries struct {
	Name          string
	Categories    []string
	Values        []float64
	Color         string
	Orientation   Orientation
	HoverTemplate string
	HoverText     []string
}

// MarshalJSON emits a plotly bar trace.
func (s BarSeries) MarshalJSON() ([]byte, error) {
	trace := map[string]any{
		"name":          s.Name,
		"type":          "bar",
		"orientation":   s.Orientation.String(),
		"marker":        map[string]string{"color": s.Color},
		"hovertemplate": s.HoverTemplate,
		"hovertext":     s.HoverText,
	}
	if s.Orientation == Horizontal {
		trace["x"], trace["y"] = s.Values, s.Categories
	} else {
		trace["x"], trace["y"] = s.Categories, s.Values
	}
	return json.Marshal(trace)
}

// Font is a plotly font block.
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Axis is a plotly axis block.
type Axis struct {
	Title         string `json:"title,omitempty"`
	GridColor     string `json:"gridcolor"`
	GridWidth     int    `json:"gridwidth"`
	GridDash      string `json:"griddash"`
	ShowGrid      bool   `json:"showgrid"`
	ZeroLineColor string `json:"zerolinecolor"`
	TickFormat    string `json:"tickformat,omitempty"`
	TickPrefix    string `json:"tickprefix,omitempty"`
	TickFont      Font   `json:"tickfont"`
	AutoMargin    bool   `json:"automargin,omitempty"`
	Categorical   bool   `json:"-"`
}

// Legend is a plotly legend block.
type Legend struct {
	Orientation string  `json:"orientation"`
	X           float64 `json:"x"`
	XAnchor     string  `json:"xanchor"`
	Y           float64 `json:"y"`
	YAnchor     string  `json:"yanchor"`
	Font        Font    `json:"font"`
}

// Margin is in pixels.
type Margin struct {
	T int `json:"t"`
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
}

// Annotation is a paper-anchored text label.
type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

// Image is a paper-anchored image such as the logo.
type Image struct {
	Source  string  `json:"source"`
	XRef    string  `json:"xref"`
	YRef    string  `json:"yref"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	SizeX   float64 `json:"sizex"`
	SizeY   float64 `json:"sizey"`
	XAnchor string  `json:"xanchor"`
	YAnchor string  `json:"yanchor"`
}

// Layout is the plotly layout for a bar chart.
type Layout struct {
	Title        string       `json:"title,omitempty"`
	TitleFont    Font         `json:"-"`
	Font         Font         `json:"font"`
	BarMode      string       `json:"barmode"`
	Height       int          `json:"height"`
	PlotBGColor  string       `json:"plot_bgcolor"`
	PaperBGColor string       `json:"paper_bgcolor"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	Margin       Margin       `json:"margin"`
	ShowLegend   bool         `json:"showlegend"`
	Legend       Legend       `json:"legend"`
	Images       []Image      `json:"images"`
	Annotations  []Annotation `json:"annotations"`
}

// Config is the plotly display config.
type Config struct {
	Responsive     bool `json:"responsive"`
	DisplayModeBar bool `json:"displayModeBar"`
	DisplayLogo    bool `json:"displaylogo"`
}

// Build produces the stacked bar chart for ds. It fails with an invalid
// configuration error for an empty palette or negative margin, and with a
// shape mismatch when a series does not cover every category.
func Build(ds model.Dataset, opts Options) (Spec, error) {
	if err := opts.Style.Validate(); err != nil {
		return Spec{}, err
	}
	if opts.LeftMargin != nil && *opts.LeftMargin < 0 {
		return Spec{}, &model.ConfigError{Field: "left_margin", Reason: fmt.Sprintf("%d is negative", *opts.LeftMargin)}
	}
	if err := ds.Validate(); err != nil {
		return Spec{}, err
	}
	if opts.SortByTotal {
		sorted, err := pipeline.SortByTotal(ds)
		if err != nil {
			return Spec{}, err
		}
		ds = sorted
	}

	style := opts.Style
	spec := Spec{
		Title:  opts.Title,
		Series: make([]BarSeries, len(ds.Series)),
		Layout: buildLayout(opts),
		Config: Config{Responsive: true},
	}

	for k, s := range ds.Series {
		hover := make([]string, len(s.Data))
		for i, v := range s.Data {
			hover[i] = HoverText(s.Name, ds.Categories[i], v)
		}
		spec.Series[k] = BarSeries{
			Name:          s.Name,
			Categories:    append([]string(nil), ds.Categories...),
			Values:        append([]float64(nil), s.Data...),
			Color:         style.ColorFor(k),
			Orientation:   opts.Orientation,
			HoverTemplate: hoverTemplate(s.Name, opts.Orientation),
			HoverText:     hover,
		}
	}
	return spec, nil
}

// HoverText is the resolved tooltip for one bar segment.
func HoverText(series, category string, value float64) string {
	return fmt.Sprintf("<b>%s</b><br>%s<br>%s", series, category, cli.FormatCurrency(value))
}

func hoverTemplate(series string, o Orientation) string {
	if o == Horizontal {
		return fmt.Sprintf("<b>%s</b><br>%%{y}<br>£%%{x:,.0f}<extra></extra>", series)
	}
	return fmt.Sprintf("<b>%s</b><br>%%{x}<br>£%%{y:,.0f}<extra></extra>", series)
}

func buildLayout(opts Options) Layout {
	style := opts.Style
	fontSize, tickSize, height := 12, 11, 600
	if opts.Compact {
		fontSize, tickSize, height = 10, 9, 400
	}

	base := Axis{
		GridColor:     style.GridColor,
		GridWidth:     1,
		GridDash:      "dash",
		ShowGrid:      true,
		ZeroLineColor: style.GridColor,
		TickFont:      Font{Size: tickSize},
	}
	category, value := base, base
	category.Categorical = true
	value.TickFormat = ",.0f"
	value.TickPrefix = "£"
	if !opts.Compact {
		category.Title = opts.XAxisTitle
		value.Title = opts.YAxisTitle
	}

	l := Layout{
		Font:         Font{Family: style.FontFamily, Color: style.DarkText, Size: fontSize},
		BarMode:      "stack",
		Height:       height,
		PlotBGColor:  style.LightBG,
		PaperBGColor: style.LightBG,
		Margin:       margins(opts),
		ShowLegend:   true,
		Legend: Legend{
			Orientation: "h",
			X:           0.5,
			XAnchor:     "center",
			Y:           -0.25,
			YAnchor:     "top",
			Font:        Font{Size: tickSize},
		},
		Images:      []Image{},
		Annotations: []Annotation{},
	}
	if opts.Orientation == Horizontal {
		category.AutoMargin = true
		l.XAxis, l.YAxis = value, category
	} else {
		l.XAxis, l.YAxis = category, value
	}

	if !opts.Compact {
		l.Title = opts.Title
		l.TitleFont = Font{Family: style.FontFamily, Size: 20, Color: style.DarkText}
		l.Images = []Image{{
			Source: style.LogoURL, XRef: "paper", YRef: "paper",
			X: 1.05, Y: -0.15, SizeX: 0.15, SizeY: 0.15,
			XAnchor: "right", YAnchor: "bottom",
		}}
		l.Annotations = []Annotation{{
			Text: style.SourceText, XRef: "paper", YRef: "paper",
			X: 0, Y: -0.15, XAnchor: "left", YAnchor: "bottom",
			Font: Font{Size: 11, Color: "#666"},
		}}
	}
	return l
}

func margins(opts Options) Margin {
	m := Margin{T: 100, B: 100, L: 100, R: 100}
	if opts.Compact {
		m = Margin{T: 20, B: 60, L: 60, R: 20}
	}
	if opts.Orientation == Horizontal {
		switch {
		case opts.LeftMargin != nil:
			m.L = *opts.LeftMargin
		case opts.Compact:
			m.L = HorizontalLeftMarginCompact
		default:
			m.L = HorizontalLeftMarginFull
		}
	}
	return m
}
