// Package web serves the spending dashboard over HTTP: dataset passthrough,
// chart and map specs as JSON, rendered images, and an HTML dashboard.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/views"
)

// Config controls the server.
type Config struct {
	Addr     string
	LogLevel string // debug, info, warn, error, off
	Style    chart.Style
	Sections []views.Section
	Source   string // description of the data source for /api/status
}

// Status is served at /api/status.
type Status struct {
	StartedAt     time.Time         `json:"started_at"`
	Source        string            `json:"source"`
	Requests      int64             `json:"requests"`
	FetchFailures int64             `json:"fetch_failures"`
	LastErrors    map[string]string `json:"last_errors,omitempty"`
}

// Service provides the dashboard HTTP API.
type Service struct {
	cfg     Config
	fetcher loader.Fetcher
	e       *echo.Echo

	mu         sync.RWMutex
	startedAt  time.Time
	requests   int64
	failures   int64
	lastErrors map[string]string
}

// New returns a service serving datasets from f.
func New(cfg Config, f loader.Fetcher) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if len(cfg.Sections) == 0 {
		cfg.Sections = views.DefaultSections()
	}
	if len(cfg.Style.Palette) == 0 {
		cfg.Style = chart.DefaultStyle()
	}

	s := &Service{
		cfg:        cfg,
		fetcher:    f,
		startedAt:  time.Now(),
		lastErrors: make(map[string]string),
	}
	s.e = s.newEcho()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler { return s.e }

func (s *Service) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(parseLevel(s.cfg.LogLevel))
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if parseLevel(s.cfg.LogLevel) <= log.INFO {
		e.Use(middleware.Logger())
	}
	e.Use(s.countRequests)

	e.GET("/healthz", s.handleHealth)
	e.GET("/", s.handleDashboard)
	e.GET("/charts/:name", s.handleChartPage)
	e.GET("/images/:name", s.handleChartImage)
	e.GET("/images/map/:name", s.handleMapImage)
	e.GET("/data/:name", s.handleData)

	api := e.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/sections", s.handleSections)
	api.GET("/charts/:name", s.handleChart)
	api.GET("/totals/:name", s.handleTotals)
	api.GET("/map", s.handleMap)
	api.GET("/map/regions/:code", s.handleRegion)
	api.GET("/regions", s.handleRegions)
	return e
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.e.Logger.Infof("spendviz dashboard listening on http://%s", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.e.Logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("dashboard http server: %w", err)
	}
}

func (s *Service) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Service) recordFetch(resource string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.lastErrors, resource)
		return
	}
	s.failures++
	s.lastErrors[resource] = err.Error()
}

func (s *Service) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	errs := make(map[string]string, len(s.lastErrors))
	for k, v := range s.lastErrors {
		errs[k] = v
	}
	return Status{
		StartedAt:     s.startedAt,
		Source:        s.cfg.Source,
		Requests:      s.requests,
		FetchFailures: s.failures,
		LastErrors:    errs,
	}
}

func parseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
