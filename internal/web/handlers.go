package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/pipeline"
	"github.com/theirongolddev/spendviz/internal/region"
	"github.com/theirongolddev/spendviz/internal/render"
	"github.com/theirongolddev/spendviz/internal/views"
)

const defaultMapResource = "by_region"

// errorBody is the JSON error shape.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps error kinds onto HTTP statuses.
func statusFor(err error) (int, string) {
	var fe *model.FetchError
	switch {
	case errors.As(err, &fe) && fe.Status == http.StatusNotFound:
		return http.StatusNotFound, "fetch_failure"
	case errors.Is(err, model.ErrFetchFailure):
		return http.StatusBadGateway, "fetch_failure"
	case errors.Is(err, model.ErrShapeMismatch):
		return http.StatusUnprocessableEntity, "shape_mismatch"
	case errors.Is(err, model.ErrInvalidConfiguration):
		return http.StatusBadRequest, "invalid_configuration"
	}
	return http.StatusInternalServerError, ""
}

func (s *Service) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, errorBody{Error: http.StatusText(he.Code)})
		return
	}
	code, kind := statusFor(err)
	if code >= 500 {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	_ = c.JSON(code, errorBody{Error: err.Error(), Kind: kind})
}

func (s *Service) fetch(ctx context.Context, name string) (model.Dataset, error) {
	ds, err := s.fetcher.Fetch(ctx, name)
	s.recordFetch(name, err)
	return ds, err
}

func (s *Service) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.status())
}

func (s *Service) handleData(c echo.Context) error {
	ds, err := s.fetch(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds)
}

type panelJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Kind        string `json:"kind"`
	XAxisTitle  string `json:"x_axis_title,omitempty"`
	YAxisTitle  string `json:"y_axis_title,omitempty"`
	Compact     bool   `json:"compact"`
	Horizontal  bool   `json:"horizontal"`
}

type sectionJSON struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Panels      []panelJSON `json:"panels"`
}

func (s *Service) handleSections(c echo.Context) error {
	out := make([]sectionJSON, len(s.cfg.Sections))
	for i, sec := range s.cfg.Sections {
		out[i] = sectionJSON{Title: sec.Title, Description: sec.Description}
		for _, p := range sec.Panels {
			out[i].Panels = append(out[i].Panels, panelJSON{
				ID: p.ID, Title: p.Title, Description: p.Description,
				Resource: p.Resource, Kind: p.Kind.String(),
				XAxisTitle: p.XAxisTitle, YAxisTitle: p.YAxisTitle,
				Compact: p.Compact, Horizontal: p.Horizontal,
			})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// chartOptions starts from the matching panel (if any) and applies query
// overrides: horizontal, compact, sort, left_margin, palette.
func (s *Service) chartOptions(c echo.Context, name string) (views.Panel, chart.Options, error) {
	panel, ok := views.FindPanel(s.cfg.Sections, name)
	if !ok {
		panel = views.Panel{ID: name, Title: name, Resource: name, Compact: true}
	}
	opts := panel.ChartOptions(s.cfg.Style)

	var err error
	if v := c.QueryParam("horizontal"); v != "" {
		var h bool
		if h, err = strconv.ParseBool(v); err != nil {
			return panel, opts, &model.ConfigError{Field: "horizontal", Reason: err.Error()}
		}
		opts.Orientation = chart.Vertical
		if h {
			opts.Orientation = chart.Horizontal
		}
	}
	if v := c.QueryParam("compact"); v != "" {
		if opts.Compact, err = strconv.ParseBool(v); err != nil {
			return panel, opts, &model.ConfigError{Field: "compact", Reason: err.Error()}
		}
	}
	if v := c.QueryParam("sort"); v != "" {
		if opts.SortByTotal, err = strconv.ParseBool(v); err != nil {
			return panel, opts, &model.ConfigError{Field: "sort", Reason: err.Error()}
		}
	}
	if v := c.QueryParam("left_margin"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return panel, opts, &model.ConfigError{Field: "left_margin", Reason: err.Error()}
		}
		opts.LeftMargin = &n
	}
	if v := c.QueryParam("palette"); v != "" {
		style, err := chart.StyleByName(v)
		if err != nil {
			return panel, opts, err
		}
		opts.Style = style
	}
	return panel, opts, nil
}

func (s *Service) buildChart(c echo.Context) (views.Panel, chart.Spec, error) {
	name := c.Param("name")
	panel, opts, err := s.chartOptions(c, name)
	if err != nil {
		return panel, chart.Spec{}, err
	}
	ds, err := s.fetch(c.Request().Context(), panel.Resource)
	if err != nil {
		return panel, chart.Spec{}, err
	}
	spec, err := chart.Build(ds, opts)
	return panel, spec, err
}

func (s *Service) handleChart(c echo.Context) error {
	_, spec, err := s.buildChart(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, spec)
}

func (s *Service) handleChartImage(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "png"
	}
	if err := render.CheckFormat(format); err != nil {
		return err
	}
	_, spec, err := s.buildChart(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WriteBarChart(&buf, spec, format, imageSize(c)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType(format), buf.Bytes())
}

type totalRow struct {
	Category  string             `json:"category"`
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown"`
}

func (s *Service) handleTotals(c echo.Context) error {
	ds, err := s.fetch(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	if c.QueryParam("sort") == "desc" {
		if ds, err = pipeline.SortDescending(ds); err != nil {
			return err
		}
	} else if c.QueryParam("sort") != "" {
		if ds, err = pipeline.SortByTotal(ds); err != nil {
			return err
		}
	}
	totals, err := pipeline.Aggregate(ds)
	if err != nil {
		return err
	}
	out := make([]totalRow, len(totals))
	for i, ct := range totals {
		out[i] = totalRow{Category: ct.Category, Total: ct.Total, Breakdown: ct.Breakdown}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Service) buildMap(c echo.Context, resource string) (chart.MapSpec, error) {
	compact := true
	if v := c.QueryParam("compact"); v != "" {
		var err error
		if compact, err = strconv.ParseBool(v); err != nil {
			return chart.MapSpec{}, &model.ConfigError{Field: "compact", Reason: err.Error()}
		}
	}
	ds, err := s.fetch(c.Request().Context(), resource)
	if err != nil {
		return chart.MapSpec{}, err
	}
	return chart.BuildMap(ds, chart.MapOptions{
		Title:   "Public Services Spending by Region",
		Compact: compact,
		Style:   s.cfg.Style,
	})
}

func mapResource(c echo.Context) string {
	if r := c.QueryParam("resource"); r != "" {
		return r
	}
	return defaultMapResource
}

func (s *Service) handleMap(c echo.Context) error {
	spec, err := s.buildMap(c, mapResource(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, spec)
}

func (s *Service) handleMapImage(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "png"
	}
	if err := render.CheckFormat(format); err != nil {
		return err
	}
	spec, err := s.buildMap(c, c.Param("name"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WriteMap(&buf, spec, format, imageSize(c)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType(format), buf.Bytes())
}

type regionDetail struct {
	Marker chart.Marker `json:"marker"`
	Lines  []string     `json:"lines"`
}

// handleRegion returns the side-panel detail for one region. Selection is
// held by the client; the server only resolves it against fresh data.
func (s *Service) handleRegion(c echo.Context) error {
	spec, err := s.buildMap(c, mapResource(c))
	if err != nil {
		return err
	}
	sel := chart.NewSelection(spec)
	m, ok := sel.Select(c.Param("code"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Error: "region not on map: " + c.Param("code")})
	}
	return c.JSON(http.StatusOK, regionDetail{Marker: m, Lines: chart.DetailLines(m)})
}

func (s *Service) handleRegions(c echo.Context) error {
	return c.JSON(http.StatusOK, region.All())
}

// imageSize reads optional width and height query params; bad values fall
// back to the layout size.
func imageSize(c echo.Context) render.Size {
	w, _ := strconv.Atoi(c.QueryParam("width"))
	h, _ := strconv.Atoi(c.QueryParam("height"))
	return render.Size{Width: w, Height: h}
}

func contentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "jpg":
		return "image/jpeg"
	}
	return "image/png"
}
