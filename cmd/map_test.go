package cmd

import (
	"testing"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/model"
)

func TestSelectRegion(t *testing.T) {
	ds := model.Dataset{
		Categories: []string{"LONDON", "atlantis"},
		Series:     []model.Series{{Name: "NHS", Data: []float64{100, 50}}},
	}
	spec, err := chart.BuildMap(ds, chart.MapOptions{Style: chart.DefaultStyle()})
	if err != nil {
		t.Fatal(err)
	}
	sel := chart.NewSelection(spec)

	for _, tc := range []struct{ in, want string }{
		{"atlantis", "atlantis"},
		{"london", "LONDON"},
		{"LONDON", "LONDON"},
	} {
		if err := selectRegion(sel, spec, tc.in); err != nil {
			t.Fatalf("selectRegion(%q): %v", tc.in, err)
		}
		if m, _ := sel.Selected(); m.Code != tc.want {
			t.Fatalf("selectRegion(%q) selected %q, want %q", tc.in, m.Code, tc.want)
		}
	}

	if err := selectRegion(sel, spec, "WALES"); err == nil {
		t.Fatal("region not on the map should be an error")
	}
	if m, _ := sel.Selected(); m.Code != "LONDON" {
		t.Fatalf("failed select changed selection to %q", m.Code)
	}
}
