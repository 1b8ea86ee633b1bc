package export

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/spendviz/internal/model"
)

func TestWorkbook(t *testing.T) {
	w, err := NewWorkbook()
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	ds := model.Dataset{
		Categories: []string{"1", "2"},
		Series: []model.Series{
			{Name: "NHS", Data: []float64{100, 200}},
			{Name: "Education", Data: []float64{50, 25}},
		},
	}
	if err := w.Add(Sheet{Name: "by_income_decile", Title: "Spending by Income Decile", Dataset: ds}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Add(Sheet{Name: "by_income_decile", Dataset: ds}); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	want := []string{SummarySheet, "by_income_decile", "by_income_decile_2"}
	if got := w.SheetNames(); !slices.Equal(got, want) {
		t.Fatalf("SheetNames = %v, want %v", got, want)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := w.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	total, err := f.GetCellValue("by_income_decile", "D3")
	if err != nil {
		t.Fatal(err)
	}
	if total != "225.00" {
		t.Errorf("D3 = %q, want 225.00", total)
	}
	grand, _ := f.GetCellValue(SummarySheet, "A2")
	if grand != "by_income_decile" {
		t.Errorf("summary A2 = %q", grand)
	}
}

func TestAdd_ShapeMismatch(t *testing.T) {
	w, err := NewWorkbook()
	if err != nil {
		t.Fatal(err)
	}
	bad := model.Dataset{Categories: []string{"a", "b"}, Series: []model.Series{{Name: "s", Data: []float64{1}}}}
	if err := w.Add(Sheet{Name: "bad", Dataset: bad}); err == nil {
		t.Fatal("Add accepted a mismatched dataset")
	}
}
