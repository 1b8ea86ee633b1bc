package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/labstack/echo/v4"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/views"
)

const pageTitle = "UK Public Services Spending"

// recordingFetcher routes panel loads through the service so failures show
// up in /api/status.
type recordingFetcher struct{ s *Service }

func (r recordingFetcher) Fetch(ctx context.Context, name string) (model.Dataset, error) {
	return r.s.fetch(ctx, name)
}

// handleDashboard renders every panel on one page. Panels that fail to load
// render as empty charts carrying the error message; the rest are unaffected.
func (s *Service) handleDashboard(c echo.Context) error {
	results, err := views.LoadAll(c.Request().Context(), recordingFetcher{s}, s.cfg.Sections)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = pageTitle
	for _, r := range results {
		page.AddCharts(s.panelChart(r))
	}
	return renderPage(c, page)
}

// handleChartPage renders one bar panel full size.
func (s *Service) handleChartPage(c echo.Context) error {
	panel, spec, err := s.buildChart(c)
	page := components.NewPage()
	page.PageTitle = pageTitle + ": " + panel.Title
	if err != nil {
		if _, kind := statusFor(err); kind == "invalid_configuration" {
			return err
		}
		page.AddCharts(errorChart(panel.Title, err, s.cfg.Style))
	} else {
		page.AddCharts(barChart(spec, s.cfg.Style))
	}
	return renderPage(c, page)
}

func (s *Service) panelChart(r views.PanelResult) components.Charter {
	if r.Panel.Kind == views.MapPanel {
		spec, err := r.Map(s.cfg.Style)
		if err != nil {
			return errorChart(r.Panel.Title, err, s.cfg.Style)
		}
		return mapChart(spec, r.Panel.Title, s.cfg.Style)
	}
	spec, err := r.Chart(s.cfg.Style)
	if err != nil {
		return errorChart(r.Panel.Title, err, s.cfg.Style)
	}
	return barChart(spec, s.cfg.Style)
}

func renderPage(c echo.Context, page *components.Page) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return page.Render(c.Response())
}

func px(n int) string { return strconv.Itoa(n) + "px" }

// barChart converts a built spec into an echarts stacked bar.
func barChart(spec chart.Spec, style chart.Style) *charts.Bar {
	l := spec.Layout
	horizontal := len(spec.Series) > 0 && spec.Series[0].Orientation == chart.Horizontal

	// Configured as vertical; XYReversal swaps the axes for horizontal.
	catAxis, valAxis := l.XAxis, l.YAxis
	if horizontal {
		catAxis, valAxis = l.YAxis, l.XAxis
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "100%",
			Height:          px(l.Height),
			BackgroundColor: style.LightBG,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      spec.Title,
			TitleStyle: &opts.TextStyle{Color: style.DarkText},
			Subtitle:   subtitle(l),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(l.ShowLegend),
			Bottom: "0",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         catAxis.Title,
			NameLocation: "center",
			NameGap:      30,
			AxisLabel:    axisLabel(catAxis, style),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         valAxis.Title,
			NameLocation: "center",
			NameGap:      50,
			AxisLabel:    axisLabel(valAxis, style),
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   strconv.Itoa(l.Margin.L),
			Right:  strconv.Itoa(l.Margin.R),
			Top:    strconv.Itoa(l.Margin.T + 20),
			Bottom: strconv.Itoa(l.Margin.B),
		}),
	)

	var categories []string
	if len(spec.Series) > 0 {
		categories = spec.Series[0].Categories
	}
	bar.SetXAxis(categories)
	for _, s := range spec.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Value: v}
			if i < len(s.HoverText) {
				tip := &opts.Tooltip{}
				setFormatter(&tip.Formatter, s.HoverText[i])
				data[i].Tooltip = tip
			}
		}
		bar.AddSeries(s.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
		)
	}
	if horizontal {
		bar.XYReversal()
	}
	return bar
}

func axisLabel(a chart.Axis, style chart.Style) *opts.AxisLabel {
	label := &opts.AxisLabel{Color: style.DarkText}
	if a.TickPrefix != "" {
		setFormatter(&label.Formatter, a.TickPrefix+"{value}")
	}
	return label
}

// setFormatter stores an echarts formatter template.
func setFormatter[T ~string](dst *T, template string) { *dst = T(template) }

func subtitle(l chart.Layout) string {
	if len(l.Annotations) == 0 {
		return ""
	}
	return l.Annotations[0].Text
}

// errorChart is an empty chart whose subtitle carries the failure.
func errorChart(title string, err error, style chart.Style) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "100%",
			Height:          "200px",
			BackgroundColor: style.LightBG,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			TitleStyle:    &opts.TextStyle{Color: style.DarkText},
			Subtitle:      "Error loading data: " + err.Error(),
			SubtitleStyle: &opts.TextStyle{Color: "#E06666"},
		}),
	)
	return bar
}

// mapChart plots region markers on a lon/lat plane with a continuous
// colour scale over the region totals.
func mapChart(spec chart.MapSpec, title string, style chart.Style) *charts.Scatter {
	geo := spec.Layout.Geo
	colors := make([]string, len(spec.ColorScale))
	for i, s := range spec.ColorScale {
		colors[i] = s.Color
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "100%",
			Height:          px(spec.Layout.Height),
			BackgroundColor: style.LightBG,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			TitleStyle: &opts.TextStyle{Color: style.DarkText},
			Subtitle:   spec.Layout.ColorBarTitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "Longitude",
			Min:  geo.LonRange[0],
			Max:  geo.LonRange[1],
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "Latitude",
			Min:  geo.LatRange[0],
			Max:  geo.LatRange[1],
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        float32(spec.CMin),
			Max:        float32(spec.CMax),
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)

	data := make([]opts.ScatterData, len(spec.Markers))
	for i, m := range spec.Markers {
		data[i] = opts.ScatterData{
			Name:       fmt.Sprintf("%s (%s)", m.DisplayName, m.Code),
			Value:      []any{m.Longitude, m.Latitude, m.Total},
			SymbolSize: symbolSize(m.Size),
		}
	}
	sc.AddSeries("Regions", data)
	return sc
}

// symbolSize clamps marker sizes to something readable on screen.
func symbolSize(size float64) int {
	n := int(size)
	switch {
	case n < 6:
		return 6
	case n > 60:
		return 60
	}
	return n
}

// WriteChartPage writes a standalone HTML page for one bar chart.
func WriteChartPage(w io.Writer, spec chart.Spec, style chart.Style) error {
	page := components.NewPage()
	page.PageTitle = pageTitle + ": " + spec.Title
	page.AddCharts(barChart(spec, style))
	return page.Render(w)
}

// WriteMapPage writes a standalone HTML page for the region map.
func WriteMapPage(w io.Writer, spec chart.MapSpec, title string, style chart.Style) error {
	page := components.NewPage()
	page.PageTitle = pageTitle + ": " + title
	page.AddCharts(mapChart(spec, title, style))
	return page.Render(w)
}
