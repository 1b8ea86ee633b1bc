// Package model defines the datasets, totals, and errors shared across spendviz.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Dataset is the wire shape of every spending file: an ordered list of
// category labels and one or more named value series aligned to them.
type Dataset struct {
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

// Series is one named row of values, index-aligned with Dataset.Categories.
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// CategoryTotal is the per-category sum across all series.
type CategoryTotal struct {
	Category      string
	Total         float64
	Breakdown     map[string]float64
	Order         []string // series names in dataset order
	OriginalIndex int
}

// Len returns the number of categories.
func (d Dataset) Len() int { return len(d.Categories) }

// Empty reports whether the dataset has no categories.
func (d Dataset) Empty() bool { return len(d.Categories) == 0 }

// SeriesNames returns the series names in order.
func (d Dataset) SeriesNames() []string {
	names := make([]string, len(d.Series))
	for i, s := range d.Series {
		names[i] = s.Name
	}
	return names
}

// Clone returns a deep copy so callers can reorder without touching the input.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Categories: append([]string(nil), d.Categories...),
		Series:     make([]Series, len(d.Series)),
	}
	for i, s := range d.Series {
		out.Series[i] = Series{Name: s.Name, Data: append([]float64(nil), s.Data...)}
	}
	return out
}

// CheckShape verifies every series has exactly one value per category.
func (d Dataset) CheckShape() error {
	want := len(d.Categories)
	for _, s := range d.Series {
		if len(s.Data) != want {
			return &ShapeError{Series: s.Name, Got: len(s.Data), Want: want}
		}
	}
	return nil
}

// Validate runs the full schema check applied to fetched files.
func (d Dataset) Validate() error {
	if err := d.CheckShape(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Series))
	for i, s := range d.Series {
		if s.Name == "" {
			return &ShapeError{Series: fmt.Sprintf("#%d", i), Reason: "series has no name"}
		}
		if seen[s.Name] {
			return &ShapeError{Series: s.Name, Reason: "duplicate series name"}
		}
		seen[s.Name] = true
	}
	return nil
}

// UnmarshalJSON accepts numeric category labels (income deciles are
// written as 1..10) and rejects null values in series data.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var raw struct {
		Categories []categoryLabel `json:"categories"`
		Series     []struct {
			Name string     `json:"name"`
			Data []*float64 `json:"data"`
		} `json:"series"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := Dataset{
		Categories: make([]string, len(raw.Categories)),
		Series:     make([]Series, len(raw.Series)),
	}
	for i, c := range raw.Categories {
		out.Categories[i] = string(c)
	}
	for i, s := range raw.Series {
		data := make([]float64, len(s.Data))
		for j, v := range s.Data {
			if v == nil {
				return &ShapeError{Series: s.Name, Index: j, Reason: "missing value"}
			}
			data[j] = *v
		}
		out.Series[i] = Series{Name: s.Name, Data: data}
	}
	*d = out
	return nil
}

type categoryLabel string

func (c *categoryLabel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = categoryLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("category label %s: must be a string or number", b)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return fmt.Errorf("category label %s: %w", b, err)
	}
	*c = categoryLabel(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
