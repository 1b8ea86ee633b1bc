package region

import "testing"

func TestResolve_Known(t *testing.T) {
	info := Resolve("LONDON")
	if info.DisplayName != "London" {
		t.Errorf("DisplayName = %q, want London", info.DisplayName)
	}
	if info.Latitude != 51.5 || info.Longitude != -0.1 {
		t.Errorf("coords = (%v, %v), want (51.5, -0.1)", info.Latitude, info.Longitude)
	}
}

func TestResolve_UnknownFallsBack(t *testing.T) {
	info := Resolve("MARS")
	if info.DisplayName != "MARS" {
		t.Errorf("DisplayName = %q, want MARS", info.DisplayName)
	}
	if info.Latitude != 52 || info.Longitude != 0 {
		t.Errorf("coords = (%v, %v), want (52, 0)", info.Latitude, info.Longitude)
	}
	if _, ok := Lookup("MARS"); ok {
		t.Error("Lookup(MARS) reported ok")
	}
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != 12 {
		t.Fatalf("len(All()) = %d, want 12", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Fatalf("All() not sorted at %d: %s >= %s", i, all[i-1].Code, all[i].Code)
		}
	}
	all[0].DisplayName = "changed"
	if Resolve(all[0].Code).DisplayName == "changed" {
		t.Fatal("All() exposes registry storage")
	}
}
