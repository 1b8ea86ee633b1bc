package pipeline

import (
	"cmp"
	"slices"

	"github.com/theirongolddev/spendviz/internal/model"
)

// SortByTotal returns a copy of ds with categories ordered by ascending
// total. Ties keep their original relative order. Each series is permuted
// with its category so values stay attached to their labels.
func SortByTotal(ds model.Dataset) (model.Dataset, error) {
	return sortBy(ds, func(a, b model.CategoryTotal) int { return cmp.Compare(a.Total, b.Total) })
}

// SortDescending orders categories by descending total, ties stable.
func SortDescending(ds model.Dataset) (model.Dataset, error) {
	return sortBy(ds, func(a, b model.CategoryTotal) int { return cmp.Compare(b.Total, a.Total) })
}

func sortBy(ds model.Dataset, less func(a, b model.CategoryTotal) int) (model.Dataset, error) {
	if ds.Empty() {
		if err := ds.Validate(); err != nil {
			return model.Dataset{}, err
		}
		return model.Dataset{Categories: []string{}, Series: cloneSeriesHeaders(ds.Series)}, nil
	}

	totals, err := Aggregate(ds)
	if err != nil {
		return model.Dataset{}, err
	}
	slices.SortStableFunc(totals, less)

	out := model.Dataset{
		Categories: make([]string, len(totals)),
		Series:     make([]model.Series, len(ds.Series)),
	}
	for i, ct := range totals {
		out.Categories[i] = ct.Category
	}
	for k, s := range ds.Series {
		data := make([]float64, len(totals))
		for i, ct := range totals {
			data[i] = s.Data[ct.OriginalIndex]
		}
		out.Series[k] = model.Series{Name: s.Name, Data: data}
	}
	return out, nil
}

func cloneSeriesHeaders(series []model.Series) []model.Series {
	out := make([]model.Series, len(series))
	for i, s := range series {
		out[i] = model.Series{Name: s.Name, Data: []float64{}}
	}
	return out
}
