package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/views"
)

type mapFetcher map[string]model.Dataset

func (m mapFetcher) Fetch(_ context.Context, name string) (model.Dataset, error) {
	ds, ok := m[name]
	if !ok {
		return model.Dataset{}, &model.FetchError{Resource: name, Status: http.StatusNotFound, Detail: "Not Found"}
	}
	return ds, nil
}

var regions = model.Dataset{
	Categories: []string{"LONDON", "WALES", "SCOTLAND"},
	Series: []model.Series{
		{Name: "Health", Data: []float64{3000, 1000, 2000}},
		{Name: "Education", Data: []float64{1000, 500, 800}},
	},
}

func newTestApp(f loader.Fetcher) App {
	a := NewApp(Options{Fetcher: f, Source: "test"})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 80})
	return m.(App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var m tea.Model
		m, cmd = a.Update(key(k))
		a = m.(App)
	}
	return a, cmd
}

// runCmd executes cmd and any batched children, returning the leaf messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func deliver(a App, msgs []tea.Msg) App {
	for _, msg := range msgs {
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestReloadLoadsEveryPanel(t *testing.T) {
	f := mapFetcher{"by_region": regions}
	a := newTestApp(f)
	a, cmd := press(t, a, "r")
	a = deliver(a, runCmd(cmd))

	loading, failed := a.counts()
	if loading != 0 {
		t.Fatalf("loading = %d, want 0", loading)
	}
	// Only by_region exists: the region bar panel and the map load; the
	// other four panels fail independently.
	if failed != len(a.panels)-2 {
		t.Fatalf("failed = %d, want %d", failed, len(a.panels)-2)
	}
}

func TestStaleResultIsIgnored(t *testing.T) {
	a := newTestApp(mapFetcher{"by_region": regions})
	p := &a.panels[0]

	stale := p.loader.Begin(context.Background(), p.panel.Resource)
	staleRes := p.loader.Run(stale)
	fresh := p.loader.Begin(context.Background(), p.panel.Resource)

	staleRes.Err = nil
	staleRes.Dataset = regions
	if a.applyResult(panelLoadedMsg{index: 0, result: staleRes}) {
		t.Fatal("stale result was committed")
	}
	if got := p.loader.Snapshot().State; got != loader.Loading {
		t.Fatalf("state after stale result = %s, want loading", got)
	}

	if !a.applyResult(panelLoadedMsg{index: 0, result: loader.Result{Generation: fresh.Generation, Resource: fresh.Resource, Err: &model.FetchError{Resource: fresh.Resource, Detail: "Not Found"}}}) {
		t.Fatal("fresh result was not committed")
	}
	if got := p.loader.Snapshot().State; got != loader.Failed {
		t.Fatalf("state = %s, want failed", got)
	}
}

func TestFailedPanelDoesNotHideOthers(t *testing.T) {
	a := newTestApp(mapFetcher{"by_region": regions})
	a, cmd := press(t, a, "r")
	a = deliver(a, runCmd(cmd))

	view := a.View()
	if !strings.Contains(view, "Error loading data") {
		t.Fatal("failed panel should show an error")
	}
	if !strings.Contains(view, "Spending by Region") {
		t.Fatal("loaded panel title missing")
	}
	if !strings.Contains(view, "Highest: LONDON £4,000") {
		t.Fatal("loaded region panel should still render its chart")
	}
}

func mapTabKey(t *testing.T, a App) string {
	t.Helper()
	for si, idxs := range a.sectionP {
		for _, idx := range idxs {
			if a.panels[idx].panel.Kind == views.MapPanel {
				return string(rune('1' + si))
			}
		}
	}
	t.Fatal("no map section")
	return ""
}

func TestSectionMetricsSummariseLoadedPanels(t *testing.T) {
	a := newTestApp(mapFetcher{"by_region": regions})
	a, cmd := press(t, a, "r")
	a = deliver(a, runCmd(cmd))

	metrics := a.sectionMetrics(a.sectionP[0])
	if len(metrics) != 1 {
		t.Fatalf("metrics = %d, want 1 (only the region panel loaded)", len(metrics))
	}
	m := metrics[0]
	if m.Value != "£8.3K" || m.Note != "3 categories" {
		t.Fatalf("metric = %+v, want £8.3K over 3 categories", m)
	}
	if len(m.Trend) != 3 || m.Trend[0] != 4000 {
		t.Fatalf("trend = %v, want category totals", m.Trend)
	}
	if view := a.View(); !strings.Contains(view, "3 categories") {
		t.Fatal("section header should show the metric card")
	}
}

func TestMapSelectionAndReloadClears(t *testing.T) {
	a := newTestApp(mapFetcher{"by_region": regions})
	a, cmd := press(t, a, "r")
	a = deliver(a, runCmd(cmd))

	a, _ = press(t, a, mapTabKey(t, a))
	if !a.onMapTab() {
		t.Fatal("expected map tab to be active")
	}
	if len(a.maps.spec.Markers) != 3 {
		t.Fatalf("markers = %d, want 3", len(a.maps.spec.Markers))
	}

	a, _ = press(t, a, "j", "enter")
	m, ok := a.maps.selection.Selected()
	if !ok || m.Code != "WALES" {
		t.Fatalf("selected = %+v, %v; want WALES", m, ok)
	}
	if view := a.View(); !strings.Contains(view, "Total Spending: £1,500.00") {
		t.Fatal("detail panel should show the selected region total")
	}

	// Selecting another region replaces the first.
	a, _ = press(t, a, "j", "enter")
	if m, _ := a.maps.selection.Selected(); m.Code != "SCOTLAND" {
		t.Fatalf("selected = %s, want SCOTLAND", m.Code)
	}

	// Esc is not a way out of a selection.
	a, _ = press(t, a, "esc")
	if m, ok := a.maps.selection.Selected(); !ok || m.Code != "SCOTLAND" {
		t.Fatalf("selected after esc = %+v, %v; want SCOTLAND kept", m, ok)
	}

	a, _ = press(t, a, "r")
	if _, ok := a.maps.selection.Selected(); ok {
		t.Fatal("reload should clear the selection")
	}

	if a.maps.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 after reload", a.maps.cursor)
	}
}

func TestTabNavigation(t *testing.T) {
	a := newTestApp(mapFetcher{})
	n := len(a.sections)

	a, _ = press(t, a, "2")
	if a.activeTab != 1 {
		t.Fatalf("activeTab = %d, want 1", a.activeTab)
	}
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyLeft})
	a = m.(App)
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyLeft})
	a = m.(App)
	if a.activeTab != n-1 {
		t.Fatalf("activeTab = %d, want %d after wrapping left", a.activeTab, n-1)
	}
	a, _ = press(t, a, "9")
	if a.activeTab != n-1 {
		t.Fatal("out of range number key should be ignored")
	}
}

func TestNarrowTerminal(t *testing.T) {
	a := NewApp(Options{Fetcher: mapFetcher{}})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if view := m.(App).View(); !strings.Contains(view, "Terminal too narrow") {
		t.Fatalf("view = %q", view)
	}
}
