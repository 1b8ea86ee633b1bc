// Package views describes the dashboard's sections and panels and loads
// them as a unit while letting each panel fail on its own.
package views

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/loader"
)

// Kind selects how a panel renders.
type Kind int

const (
	BarPanel Kind = iota
	MapPanel
)

func (k Kind) String() string {
	if k == MapPanel {
		return "map"
	}
	return "bar"
}

// Panel is one chart or map with its data file.
type Panel struct {
	ID          string
	Title       string
	Description string
	Resource    string
	Kind        Kind
	XAxisTitle  string
	YAxisTitle  string
	Compact     bool
	Horizontal  bool
	SortByTotal bool
	LeftMargin  *int
}

// Section groups panels under a heading.
type Section struct {
	Title       string
	Description string
	Panels      []Panel
}

const (
	perHousehold    = "Per-year spending per household (£)"
	perPerson       = "Per-year spending per person (£)"
	nhsPerHousehold = "Per-year NHS spending per household (£)"
)

// DefaultSections returns the dashboard layout.
func DefaultSections() []Section {
	return []Section{
		{
			Title:       "Spending by demographic characteristics",
			Description: "How public services spending varies across different population groups",
			Panels: []Panel{
				{
					ID:          "income-decile",
					Title:       "Spending by Income Decile",
					Description: "Annual public services spending per household across income deciles, from the poorest 10% (1st) to the richest 10% (10th) of households.",
					Resource:    "by_income_decile",
					XAxisTitle:  "Income Decile",
					YAxisTitle:  perHousehold,
					Compact:     true,
				},
				{
					ID:          "region",
					Title:       "Spending by Region",
					Description: "Regional distribution of public services spending per household across the UK.",
					Resource:    "by_region",
					XAxisTitle:  "Region",
					YAxisTitle:  perHousehold,
					Compact:     true,
				},
			},
		},
		{
			Title:       "Spending by household composition",
			Description: "Distribution of public services across different household types and age groups",
			Panels: []Panel{
				{
					ID:          "age-group",
					Title:       "Spending by Age Group",
					Description: "Per-person public services spending across different age groups, showing how spending varies throughout the lifecycle.",
					Resource:    "by_age_group",
					XAxisTitle:  "Age Group",
					YAxisTitle:  perPerson,
					Compact:     true,
				},
				{
					ID:          "household-type",
					Title:       "Spending by Household Type",
					Description: "Distribution of public services spending across different household compositions and family structures.",
					Resource:    "by_household_type",
					XAxisTitle:  "Household Type",
					YAxisTitle:  perHousehold,
					Compact:     true,
					Horizontal:  true,
					SortByTotal: true,
				},
			},
		},
		{
			Title:       "NHS service breakdown",
			Description: "Detailed analysis of NHS spending by service type across income deciles",
			Panels: []Panel{
				{
					ID:          "nhs-services",
					Title:       "NHS Service Breakdown by Income Decile",
					Description: "Breakdown of NHS spending by service type (hospital, GP, prescriptions, etc.) across income deciles, showing how different services are utilized by different income groups.",
					Resource:    "nhs_services_by_decile",
					XAxisTitle:  "Income Decile",
					YAxisTitle:  nhsPerHousehold,
					Compact:     true,
				},
			},
		},
		{
			Title:       "Regional map",
			Description: "Total public services spending per household by UK region",
			Panels: []Panel{
				{
					ID:          "region-map",
					Title:       "Public Services Spending by Region",
					Description: "Select a region to see how its spending splits across services.",
					Resource:    "by_region",
					Kind:        MapPanel,
					Compact:     true,
				},
			},
		},
	}
}

// AllPanels flattens sections into panel order.
func AllPanels(sections []Section) []Panel {
	var out []Panel
	for _, s := range sections {
		out = append(out, s.Panels...)
	}
	return out
}

// FindPanel returns the panel with the given ID or resource name.
func FindPanel(sections []Section, key string) (Panel, bool) {
	for _, p := range AllPanels(sections) {
		if p.ID == key {
			return p, true
		}
	}
	name, err := loader.NormalizeName(key)
	if err != nil {
		return Panel{}, false
	}
	for _, p := range AllPanels(sections) {
		if p.Resource == name && p.Kind == BarPanel {
			return p, true
		}
	}
	return Panel{}, false
}

// ChartOptions converts a panel into chart builder options.
func (p Panel) ChartOptions(style chart.Style) chart.Options {
	o := chart.Options{
		Title:       p.Title,
		XAxisTitle:  p.XAxisTitle,
		YAxisTitle:  p.YAxisTitle,
		Compact:     p.Compact,
		LeftMargin:  p.LeftMargin,
		SortByTotal: p.SortByTotal,
		Style:       style,
	}
	if p.Horizontal {
		o.Orientation = chart.Horizontal
	}
	return o
}

// PanelResult is the outcome of loading one panel.
type PanelResult struct {
	Panel    Panel
	Snapshot loader.Snapshot
}

// Err is the panel's failure, nil when loaded.
func (r PanelResult) Err() error {
	if r.Snapshot.State == loader.Failed {
		return r.Snapshot.Err
	}
	if r.Snapshot.State != loader.Loaded {
		return fmt.Errorf("%s: not loaded", r.Panel.Resource)
	}
	return nil
}

// Chart builds the bar chart for a loaded panel.
func (r PanelResult) Chart(style chart.Style) (chart.Spec, error) {
	if err := r.Err(); err != nil {
		return chart.Spec{}, err
	}
	return chart.Build(r.Snapshot.Dataset, r.Panel.ChartOptions(style))
}

// Map builds the region map for a loaded panel.
func (r PanelResult) Map(style chart.Style) (chart.MapSpec, error) {
	if err := r.Err(); err != nil {
		return chart.MapSpec{}, err
	}
	return chart.BuildMap(r.Snapshot.Dataset, chart.MapOptions{
		Title:   r.Panel.Title,
		Compact: r.Panel.Compact,
		Style:   style,
	})
}

// DefaultConcurrency bounds simultaneous panel fetches.
const DefaultConcurrency = 4

// LoadAll loads every panel through its own loader. A failing panel never
// affects its siblings; the returned slice is in panel order. The only
// error returned is context cancellation.
func LoadAll(ctx context.Context, f loader.Fetcher, sections []Section) ([]PanelResult, error) {
	panels := AllPanels(sections)
	results := make([]PanelResult, len(panels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)
	for i, p := range panels {
		g.Go(func() error {
			snap := loader.New(f).Load(gctx, p.Resource)
			results[i] = PanelResult{Panel: p, Snapshot: snap}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Failures returns the panels that did not load.
func Failures(results []PanelResult) []PanelResult {
	var out []PanelResult
	for _, r := range results {
		if r.Snapshot.State != loader.Loaded {
			out = append(out, r)
		}
	}
	return out
}

// ResourceNames returns the distinct resources in panel order.
func ResourceNames(sections []Section) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range AllPanels(sections) {
		if !seen[p.Resource] {
			seen[p.Resource] = true
			out = append(out, p.Resource)
		}
	}
	return out
}
