package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/spendviz/internal/model"
)

// syntheticDataset builds a dataset shaped like the household-type files:
// many categories, a handful of service series.
func syntheticDataset(categories, series int) model.Dataset {
	ds := model.Dataset{Categories: make([]string, categories)}
	for i := range ds.Categories {
		ds.Categories[i] = fmt.Sprintf("cat-%03d", i)
	}
	for k := 0; k < series; k++ {
		data := make([]float64, categories)
		for i := range data {
			data[i] = float64((i*7919+k*104729)%5000) + 0.5
		}
		ds.Series = append(ds.Series, model.Series{Name: fmt.Sprintf("service-%d", k), Data: data})
	}
	return ds
}

func BenchmarkAggregate(b *testing.B) {
	ds := syntheticDataset(500, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Aggregate(ds); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSortByTotal(b *testing.B) {
	ds := syntheticDataset(500, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SortByTotal(ds); err != nil {
			b.Fatal(err)
		}
	}
}
