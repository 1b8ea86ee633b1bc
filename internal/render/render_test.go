package render

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/theirongolddev/spendviz/internal/chart"
	"github.com/theirongolddev/spendviz/internal/model"
)

func spendingDataset() model.Dataset {
	return model.Dataset{
		Categories: []string{"LONDON", "WALES", "SCOTLAND"},
		Series: []model.Series{
			{Name: "NHS", Data: []float64{4000, 3500, 3800}},
			{Name: "Education", Data: []float64{2000, 1800, 1900}},
		},
	}
}

func TestWriteBarChart_SVG(t *testing.T) {
	for _, o := range []chart.Orientation{chart.Vertical, chart.Horizontal} {
		spec, err := chart.Build(spendingDataset(), chart.Options{Title: "Regions", Orientation: o, Style: chart.DefaultStyle()})
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := WriteBarChart(&buf, spec, "svg", Size{Width: 600}); err != nil {
			t.Fatalf("orientation %v: WriteBarChart: %v", o, err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Fatalf("orientation %v: output is not SVG", o)
		}
	}
}

func TestWriteBarChart_PNG(t *testing.T) {
	spec, err := chart.Build(spendingDataset(), chart.Options{Compact: true, Style: chart.DefaultStyle()})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteBarChart(&buf, spec, "png", Size{}); err != nil {
		t.Fatalf("WriteBarChart: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatal("output is not PNG")
	}
}

func TestWriteMap(t *testing.T) {
	spec, err := chart.BuildMap(spendingDataset(), chart.MapOptions{Style: chart.DefaultStyle()})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteMap(&buf, spec, "svg", Size{}); err != nil {
		t.Fatalf("WriteMap: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty map output")
	}
}

func TestCheckFormat(t *testing.T) {
	if err := CheckFormat("gif"); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("CheckFormat(gif) = %v", err)
	}
}

func TestHexColor(t *testing.T) {
	got := hexColor("#4472C4", color.Black)
	if got != (color.RGBA{R: 0x44, G: 0x72, B: 0xC4, A: 255}) {
		t.Fatalf("hexColor = %v", got)
	}
	if hexColor("#666", color.Black) != (color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 255}) {
		t.Fatal("short hex not expanded")
	}
	if hexColor("teal", color.Black) != color.Black {
		t.Fatal("bad hex did not fall back")
	}
}

func TestSizeResolve_ClampsOversize(t *testing.T) {
	w, h := Size{Width: 200000, Height: 200000}.resolve(600)
	if w != px(MaxDimension) || h != px(MaxDimension) {
		t.Fatalf("resolve = %v x %v, want %v x %v", w, h, px(MaxDimension), px(MaxDimension))
	}

	w, h = Size{}.resolve(450)
	if w != px(defaultWidth) || h != px(450) {
		t.Fatalf("resolve defaults = %v x %v, want %v x %v", w, h, px(defaultWidth), px(450))
	}
}
