// Package export writes spending datasets to an Excel workbook.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/spendviz/internal/model"
	"github.com/theirongolddev/spendviz/internal/pipeline"
)

// SummarySheet lists every dataset's grand total.
const SummarySheet = "Totals"

// Sheet is one dataset to export.
type Sheet struct {
	Name    string // sheet name; truncated to Excel's 31 characters
	Title   string
	Dataset model.Dataset
}

// Workbook accumulates dataset sheets.
type Workbook struct {
	f      *excelize.File
	money  int
	header int
	rows   [][]any
	names  map[string]bool
}

// NewWorkbook creates a workbook whose first sheet is the totals summary.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1D4044"}},
	})
	if err != nil {
		return nil, err
	}

	w := &Workbook{f: f, money: money, header: header, names: map[string]bool{SummarySheet: true}}
	if err := w.writeRow(SummarySheet, 1, []any{"Dataset", "Title", "Categories", "Series", "Grand total (£)"}, w.header); err != nil {
		return nil, err
	}
	return w, nil
}

// Add writes one dataset sheet: a category column, one column per series,
// and a Total column.
func (w *Workbook) Add(s Sheet) error {
	totals, err := pipeline.Aggregate(s.Dataset)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}

	name := w.uniqueName(s.Name)
	if _, err := w.f.NewSheet(name); err != nil {
		return err
	}

	headers := []any{"Category"}
	for _, ser := range s.Dataset.Series {
		headers = append(headers, ser.Name)
	}
	headers = append(headers, "Total")
	if err := w.writeRow(name, 1, headers, w.header); err != nil {
		return err
	}

	var grand float64
	for i, ct := range totals {
		row := []any{ct.Category}
		for _, ser := range s.Dataset.Series {
			row = append(row, ser.Data[i])
		}
		row = append(row, ct.Total)
		if err := w.writeRow(name, i+2, row, 0); err != nil {
			return err
		}
		grand += ct.Total
	}

	if len(totals) > 0 {
		first, _ := excelize.CoordinatesToCellName(2, 2)
		last, _ := excelize.CoordinatesToCellName(len(headers), len(totals)+1)
		if err := w.f.SetCellStyle(name, first, last, w.money); err != nil {
			return err
		}
	}
	if err := w.f.SetColWidth(name, "A", "A", 28); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := w.f.SetColWidth(name, "B", lastCol, 16); err != nil {
		return err
	}

	w.rows = append(w.rows, []any{name, s.Title, len(s.Dataset.Categories), len(s.Dataset.Series), grand})
	return nil
}

// SaveAs writes the summary sheet and saves the workbook.
func (w *Workbook) SaveAs(path string) error {
	for i, row := range w.rows {
		if err := w.writeRow(SummarySheet, i+2, row, 0); err != nil {
			return err
		}
	}
	if len(w.rows) > 0 {
		cell, _ := excelize.CoordinatesToCellName(5, 2)
		end, _ := excelize.CoordinatesToCellName(5, len(w.rows)+1)
		if err := w.f.SetCellStyle(SummarySheet, cell, end, w.money); err != nil {
			return err
		}
	}
	if err := w.f.SetColWidth(SummarySheet, "A", "B", 32); err != nil {
		return err
	}
	w.f.SetActiveSheet(0)
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return w.f.Close()
}

// SheetNames returns the workbook's sheets in order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *Workbook) writeRow(sheet string, row int, values []any, style int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return err
	}
	if style != 0 {
		end, _ := excelize.CoordinatesToCellName(len(values), row)
		return w.f.SetCellStyle(sheet, cell, end, style)
	}
	return nil
}

// uniqueName makes a valid, unused sheet name.
func (w *Workbook) uniqueName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "Sheet"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	base := name
	for i := 2; w.names[name]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		if len(base)+len(suffix) > 31 {
			name = base[:31-len(suffix)] + suffix
		} else {
			name = base + suffix
		}
	}
	w.names[name] = true
	return name
}
