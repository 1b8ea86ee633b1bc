package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDatasetUnmarshal_NumericCategories(t *testing.T) {
	var ds Dataset
	body := `{"categories":[1,2,10],"series":[{"name":"NHS","data":[100.5,200,300]}]}`
	if err := json.Unmarshal([]byte(body), &ds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"1", "2", "10"}
	for i, c := range want {
		if ds.Categories[i] != c {
			t.Errorf("Categories[%d] = %q, want %q", i, ds.Categories[i], c)
		}
	}
	if ds.Series[0].Data[0] != 100.5 {
		t.Errorf("Data[0] = %v, want 100.5", ds.Series[0].Data[0])
	}
}

func TestDatasetUnmarshal_NullValueIsShapeMismatch(t *testing.T) {
	var ds Dataset
	body := `{"categories":["A","B"],"series":[{"name":"Education","data":[1,null]}]}`
	err := json.Unmarshal([]byte(body), &ds)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ds      Dataset
		wantErr bool
	}{
		{"ok", Dataset{Categories: []string{"A", "B"}, Series: []Series{{Name: "x", Data: []float64{1, 2}}}}, false},
		{"short series", Dataset{Categories: []string{"A", "B", "C"}, Series: []Series{{Name: "x", Data: []float64{1, 2}}}}, true},
		{"unnamed", Dataset{Categories: []string{"A"}, Series: []Series{{Data: []float64{1}}}}, true},
		{"duplicate", Dataset{Categories: []string{"A"}, Series: []Series{{Name: "x", Data: []float64{1}}, {Name: "x", Data: []float64{2}}}}, true},
		{"empty", Dataset{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrShapeMismatch) {
				t.Fatalf("Validate() = %v, not a shape mismatch", err)
			}
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	ds := Dataset{Categories: []string{"A"}, Series: []Series{{Name: "x", Data: []float64{1}}}}
	c := ds.Clone()
	c.Categories[0] = "Z"
	c.Series[0].Data[0] = 99
	if ds.Categories[0] != "A" || ds.Series[0].Data[0] != 1 {
		t.Fatalf("Clone shares storage with original: %+v", ds)
	}
}

func TestFetchError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&FetchError{Resource: "by_region", Status: 404, Detail: "Not Found", Err: cause})
	if !errors.Is(err, ErrFetchFailure) {
		t.Error("FetchError does not match ErrFetchFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("FetchError does not unwrap its cause")
	}
	if got, want := err.Error(), "Failed to load data: Not Found (by_region)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
