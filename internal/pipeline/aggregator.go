// Package pipeline reshapes spending datasets: per-category totals and
// total-ordered category sorting. Every function here is pure.
package pipeline

import (
	"cmp"
	"slices"

	"github.com/theirongolddev/spendviz/internal/model"
)

// Aggregate sums every series at each category index. The returned totals
// are in dataset category order and carry a per-series breakdown.
func Aggregate(ds model.Dataset) ([]model.CategoryTotal, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	names := ds.SeriesNames()
	totals := make([]model.CategoryTotal, len(ds.Categories))
	for i, cat := range ds.Categories {
		ct := model.CategoryTotal{
			Category:      cat,
			Breakdown:     make(map[string]float64, len(ds.Series)),
			Order:         names,
			OriginalIndex: i,
		}
		for _, s := range ds.Series {
			ct.Breakdown[s.Name] = s.Data[i]
			ct.Total += s.Data[i]
		}
		totals[i] = ct
	}
	return totals, nil
}

// SeriesTotal is the sum of one series across all categories.
type SeriesTotal struct {
	Name  string
	Total float64
	Share float64 // fraction of the grand total, 0 when the grand total is 0
}

// SeriesTotals sums each series across categories, in series order.
func SeriesTotals(ds model.Dataset) ([]SeriesTotal, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	out := make([]SeriesTotal, len(ds.Series))
	var grand float64
	for i, s := range ds.Series {
		var sum float64
		for _, v := range s.Data {
			sum += v
		}
		out[i] = SeriesTotal{Name: s.Name, Total: sum}
		grand += sum
	}
	if grand != 0 {
		for i := range out {
			out[i].Share = out[i].Total / grand
		}
	}
	return out, nil
}

// GrandTotal sums every value in the dataset.
func GrandTotal(ds model.Dataset) (float64, error) {
	totals, err := Aggregate(ds)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, ct := range totals {
		sum += ct.Total
	}
	return sum, nil
}

// TotalRange returns the smallest and largest category totals.
// Both are zero for an empty slice.
func TotalRange(totals []model.CategoryTotal) (lo, hi float64) {
	if len(totals) == 0 {
		return 0, 0
	}
	lo = slices.MinFunc(totals, func(a, b model.CategoryTotal) int { return cmp.Compare(a.Total, b.Total) }).Total
	hi = slices.MaxFunc(totals, func(a, b model.CategoryTotal) int { return cmp.Compare(a.Total, b.Total) }).Total
	return lo, hi
}
