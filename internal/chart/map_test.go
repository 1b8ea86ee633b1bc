package chart

import (
	"testing"

	"github.com/theirongolddev/spendviz/internal/model"
)

func regionDataset() model.Dataset {
	return model.Dataset{
		Categories: []string{"LONDON", "WALES", "MARS"},
		Series: []model.Series{
			{Name: "NHS", Data: []float64{3000, 1000, 2000}},
			{Name: "Education", Data: []float64{1000, 1000, 500.25}},
		},
	}
}

func TestBuildMap_Markers(t *testing.T) {
	spec, err := BuildMap(regionDataset(), MapOptions{Compact: true, Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}
	if len(spec.Markers) != 3 {
		t.Fatalf("len(Markers) = %d, want 3", len(spec.Markers))
	}
	london := spec.Markers[0]
	if london.DisplayName != "London" || london.Total != 4000 || london.Size != 40 {
		t.Errorf("London marker = %+v", london)
	}
	if london.Color != "#1D4044" {
		t.Errorf("max total colour = %s, want #1D4044", london.Color)
	}
	if spec.Markers[1].Color != "#E8F4F8" {
		t.Errorf("min total colour = %s, want #E8F4F8", spec.Markers[1].Color)
	}
	mars := spec.Markers[2]
	if mars.DisplayName != "MARS" || mars.Latitude != 52 || mars.Longitude != 0 || mars.Known {
		t.Errorf("fallback marker = %+v", mars)
	}
	if spec.CMin != 2000 || spec.CMax != 4000 {
		t.Errorf("cmin/cmax = %v/%v, want 2000/4000", spec.CMin, spec.CMax)
	}
	if len(london.Breakdown) != 2 || london.Breakdown[0].Series != "NHS" || london.Breakdown[0].Value != 3000 {
		t.Errorf("breakdown = %+v", london.Breakdown)
	}
}

func TestBuildMap_FlatRangeUsesMidpoint(t *testing.T) {
	ds := model.Dataset{
		Categories: []string{"LONDON", "WALES"},
		Series:     []model.Series{{Name: "NHS", Data: []float64{5, 5}}},
	}
	spec, err := BuildMap(ds, MapOptions{Style: DefaultStyle()})
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range spec.Markers {
		if m.Color != "#4BACC6" {
			t.Errorf("%s colour = %s, want midpoint #4BACC6", m.Code, m.Color)
		}
	}
}

func TestBuildMap_Layout(t *testing.T) {
	compact, _ := BuildMap(regionDataset(), MapOptions{Compact: true, Style: DefaultStyle()})
	full, _ := BuildMap(regionDataset(), MapOptions{Title: "Map", Style: DefaultStyle()})
	if compact.Layout.Height != 500 || full.Layout.Height != 700 {
		t.Errorf("heights = %d/%d, want 500/700", compact.Layout.Height, full.Layout.Height)
	}
	if compact.Layout.Margin != (Margin{T: 40, B: 20}) || full.Layout.Margin != (Margin{T: 80, B: 40}) {
		t.Errorf("margins = %+v / %+v", compact.Layout.Margin, full.Layout.Margin)
	}
	if len(compact.Layout.Images) != 0 || len(full.Layout.Images) != 1 {
		t.Error("logo should appear only when not compact")
	}
	if full.Layout.Geo.LonRange != [2]float64{-11, 3} || full.Layout.Geo.LatRange != [2]float64{49.5, 61} {
		t.Errorf("geo ranges = %+v", full.Layout.Geo)
	}
}

func TestScaleColor(t *testing.T) {
	if got := ScaleColor(0.25); got != "#9AD0DF" {
		t.Errorf("ScaleColor(0.25) = %s, want #9AD0DF", got)
	}
	if got := ScaleColor(2); got != "#1D4044" {
		t.Errorf("ScaleColor(2) = %s, want clamp to #1D4044", got)
	}
}

func TestSelection(t *testing.T) {
	spec, _ := BuildMap(regionDataset(), MapOptions{Style: DefaultStyle()})
	sel := NewSelection(spec)
	if _, ok := sel.Selected(); ok {
		t.Fatal("new selection is not empty")
	}
	if _, ok := sel.Select("LONDON"); !ok {
		t.Fatal("Select(LONDON) failed")
	}
	if m, ok := sel.Select("WALES"); !ok || m.DisplayName != "Wales" {
		t.Fatalf("Select(WALES) = %+v, %v", m, ok)
	}
	if m, _ := sel.Selected(); m.Code != "WALES" {
		t.Fatalf("Selected = %s, want WALES (single selection)", m.Code)
	}
	if _, ok := sel.Select("ATLANTIS"); ok {
		t.Fatal("Select(ATLANTIS) succeeded")
	}
	if m, _ := sel.Selected(); m.Code != "WALES" {
		t.Fatal("failed select changed the selection")
	}
	sel.Reset(spec)
	if _, ok := sel.Selected(); ok {
		t.Fatal("Reset did not clear the selection")
	}
}

func TestDetailLines(t *testing.T) {
	spec, _ := BuildMap(regionDataset(), MapOptions{Style: DefaultStyle()})
	lines := DetailLines(spec.Markers[2])
	want := []string{"MARS", "Total Spending: £2,500.25", "NHS: £2,000.00", "Education: £500.25"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
