// Package render draws chart and map specs to static images with gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/cli"
	"github.com/theirongolddev/spendviz/internal/model"
)

// Formats supported by Write.
var Formats = []string{"png", "svg", "pdf", "jpg"}

// Size is an output size in CSS pixels.
type Size struct {
	Width  int
	Height int
}

const (
	defaultWidth = 900
	// MaxDimension caps either side of a rendered image.
	MaxDimension = 4000
)

func (s Size) resolve(layoutHeight int) (vg.Length, vg.Length) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = layoutHeight
	}
	if h <= 0 {
		h = 600
	}
	w, h = min(w, MaxDimension), min(h, MaxDimension)
	return px(float64(w)), px(float64(h))
}

// px converts CSS pixels to points.
func px(v float64) vg.Length { return vg.Points(v * 0.75) }

// CheckFormat reports whether format can be written.
func CheckFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return &model.ConfigError{Field: "format", Reason: fmt.Sprintf("unsupported image format %q (want one of %s)", format, strings.Join(Formats, ", "))}
}

// BarChart draws a stacked bar chart spec.
func BarChart(spec chart.Spec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Layout.Title
	if p.Title.Text == "" {
		p.Title.Text = spec.Title
	}
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = spec.Layout.XAxis.Title
	p.Y.Label.Text = spec.Layout.YAxis.Title
	p.BackgroundColor = hexColor(spec.Layout.PaperBGColor, color.White)
	p.Legend.Top = true
	p.Legend.Left = false

	if len(spec.Series) == 0 {
		return p, nil
	}

	horizontal := spec.Series[0].Orientation == chart.Horizontal
	n := len(spec.Series[0].Categories)
	width := vg.Points(math.Max(6, math.Min(40, 480/float64(max(n, 1)))))

	var below *plotter.BarChart
	for _, s := range spec.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		bars.Color = hexColor(s.Color, color.Gray{Y: 128})
		bars.LineStyle.Width = vg.Length(0)
		bars.Horizontal = horizontal
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
		below = bars
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = hexColor(spec.Layout.XAxis.GridColor, color.Gray{Y: 230})
	grid.Horizontal.Color = grid.Vertical.Color
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Dashes = grid.Vertical.Dashes
	p.Add(grid)

	cats := spec.Series[0].Categories
	if horizontal {
		p.NominalY(cats...)
		p.X.Tick.Marker = poundTicks{}
		p.X.Min = math.Min(0, p.X.Min)
	} else {
		p.NominalX(cats...)
		p.Y.Tick.Marker = poundTicks{}
		p.Y.Min = math.Min(0, p.Y.Min)
		if n > 6 {
			p.X.Tick.Label.Rotation = math.Pi / 4
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}
	return p, nil
}

// Map draws region markers as bubbles on longitude/latitude axes.
func Map(spec chart.MapSpec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Layout.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.BackgroundColor = hexColor(spec.Layout.Geo.OceanColor, color.White)
	p.X.Min, p.X.Max = spec.Layout.Geo.LonRange[0], spec.Layout.Geo.LonRange[1]
	p.Y.Min, p.Y.Max = spec.Layout.Geo.LatRange[0], spec.Layout.Geo.LatRange[1]
	p.Add(plotter.NewGrid())

	if len(spec.Markers) == 0 {
		return p, nil
	}

	points := make(plotter.XYs, len(spec.Markers))
	labels := make([]string, len(spec.Markers))
	for i, m := range spec.Markers {
		points[i].X = m.Longitude
		points[i].Y = m.Latitude
		labels[i] = m.DisplayName + "\n" + cli.FormatCompactCurrency(m.Total)

		bubble, err := plotter.NewScatter(plotter.XYs{points[i]})
		if err != nil {
			return nil, fmt.Errorf("marker %s: %w", m.Code, err)
		}
		bubble.GlyphStyle.Color = hexColor(m.Color, color.Gray{Y: 128})
		bubble.GlyphStyle.Radius = px(math.Max(3, math.Min(40, m.Size/2)))
		bubble.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(bubble)
	}

	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Color = hexColor(spec.Layout.Font.Color, color.Black)
		lbl.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(lbl)
	return p, nil
}

// Write encodes p in format to w.
func Write(w io.Writer, p *plot.Plot, format string, width, height vg.Length) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// WriteBarChart renders spec straight to w.
func WriteBarChart(w io.Writer, spec chart.Spec, format string, size Size) error {
	p, err := BarChart(spec)
	if err != nil {
		return err
	}
	width, height := size.resolve(spec.Layout.Height)
	return Write(w, p, format, width, height)
}

// WriteMap renders spec straight to w.
func WriteMap(w io.Writer, spec chart.MapSpec, format string, size Size) error {
	p, err := Map(spec)
	if err != nil {
		return err
	}
	width, height := size.resolve(spec.Layout.Height)
	return Write(w, p, format, width, height)
}

// poundTicks labels the value axis as whole pounds.
type poundTicks struct{}

func (poundTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = cli.FormatCurrency(ticks[i].Value)
		}
	}
	return ticks
}

// hexColor parses #RGB or #RRGGBB, returning fallback otherwise.
func hexColor(s string, fallback color.Color) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
