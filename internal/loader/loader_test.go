package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/spendviz/internal/model"
)

const regionJSON = `{"categories":["LONDON","WALES"],"series":[{"name":"NHS","data":[3000,2000]},{"name":"Education","data":[1000,900]}]}`

func newDataServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/data/by_region.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(regionJSON))
	})
	mux.HandleFunc("/data/broken.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"categories":["A","B","C"],"series":[{"name":"x","data":[1,2]}]}`))
	})
	mux.HandleFunc("/data/garbage.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNormalizeName(t *testing.T) {
	for _, in := range []string{"by_region", "by_region.json", "/data/by_region.json", " by_region "} {
		got, err := NormalizeName(in)
		if err != nil || got != "by_region" {
			t.Errorf("NormalizeName(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "..", "by region", ".hidden"} {
		if _, err := NormalizeName(in); err == nil {
			t.Errorf("NormalizeName(%q) accepted", in)
		}
	}
}

func TestHTTPFetcher_Success(t *testing.T) {
	srv := newDataServer(t)
	ds, err := NewHTTPFetcher(srv.URL, time.Second).Fetch(context.Background(), "by_region.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ds.Categories) != 2 || ds.Series[1].Name != "Education" {
		t.Fatalf("dataset = %+v", ds)
	}
}

func TestHTTPFetcher_ErrorKinds(t *testing.T) {
	srv := newDataServer(t)
	f := NewHTTPFetcher(srv.URL, time.Second)

	_, err := f.Fetch(context.Background(), "missing")
	var fe *model.FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusNotFound {
		t.Fatalf("missing: err = %v, want 404 FetchError", err)
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("message %q lacks status text", err.Error())
	}

	if _, err := f.Fetch(context.Background(), "broken"); !errors.Is(err, model.ErrShapeMismatch) {
		t.Errorf("broken: err = %v, want ErrShapeMismatch", err)
	}
	if _, err := f.Fetch(context.Background(), "garbage"); !errors.Is(err, model.ErrFetchFailure) {
		t.Errorf("garbage: err = %v, want ErrFetchFailure", err)
	}
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "by_region.json"), []byte(regionJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	f := DirFetcher{Root: dir}
	if _, err := f.Fetch(context.Background(), "by_region"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	_, err := f.Fetch(context.Background(), "nope")
	if !errors.Is(err, model.ErrFetchFailure) {
		t.Fatalf("missing file err = %v", err)
	}
	names, err := f.List()
	if err != nil || len(names) != 1 || names[0] != "by_region" {
		t.Fatalf("List = %v, %v", names, err)
	}
}

func TestLoader_LoadSuccess(t *testing.T) {
	srv := newDataServer(t)
	l := New(NewHTTPFetcher(srv.URL, time.Second))
	if l.Snapshot().State != Idle {
		t.Fatal("new loader is not idle")
	}
	snap := l.Load(context.Background(), "by_region")
	if snap.State != Loaded {
		t.Fatalf("State = %v, err %v", snap.State, snap.Err)
	}
	if snap.Dataset.Len() != 2 || snap.Err != nil {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLoader_HTTP404Fails(t *testing.T) {
	srv := newDataServer(t)
	l := New(NewHTTPFetcher(srv.URL, time.Second))
	snap := l.Load(context.Background(), "nowhere")
	if snap.State != Failed {
		t.Fatalf("State = %v, want failed", snap.State)
	}
	if snap.Message == "" {
		t.Error("Failed snapshot has empty message")
	}
	if !snap.Dataset.Empty() {
		t.Error("Failed snapshot carries a dataset")
	}
}

// gatedFetcher blocks each fetch until its resource's gate is released or
// the request context is cancelled.
type gatedFetcher struct {
	gates map[string]chan struct{}
}

func (g gatedFetcher) Fetch(ctx context.Context, name string) (model.Dataset, error) {
	select {
	case <-g.gates[name]:
		return model.Dataset{
			Categories: []string{name},
			Series:     []model.Series{{Name: "s", Data: []float64{1}}},
		}, nil
	case <-ctx.Done():
		return model.Dataset{}, ctx.Err()
	}
}

func TestLoader_StaleResponseCannotCommit(t *testing.T) {
	g := gatedFetcher{gates: map[string]chan struct{}{
		"first":  make(chan struct{}),
		"second": make(chan struct{}),
	}}
	l := New(g)

	first := l.Begin(context.Background(), "first")
	firstDone := make(chan Result, 1)
	go func() { firstDone <- l.Run(first) }()

	second := l.Begin(context.Background(), "second")
	close(g.gates["second"])
	if !l.Commit(l.Run(second)) {
		t.Fatal("latest request did not commit")
	}

	// The superseded request was cancelled; let it finish either way.
	close(g.gates["first"])
	res := <-firstDone
	if l.Commit(res) {
		t.Fatal("stale request committed")
	}
	if first.Context().Err() == nil {
		t.Error("superseded request context was not cancelled")
	}

	snap := l.Snapshot()
	if snap.State != Loaded || snap.Dataset.Categories[0] != "second" {
		t.Fatalf("snapshot = %+v, want loaded 'second'", snap)
	}
}

func TestLoader_BeginClearsPriorDataset(t *testing.T) {
	srv := newDataServer(t)
	l := New(NewHTTPFetcher(srv.URL, time.Second))
	l.Load(context.Background(), "by_region")
	l.Begin(context.Background(), "by_region")
	snap := l.Snapshot()
	if snap.State != Loading || !snap.Dataset.Empty() {
		t.Fatalf("snapshot after Begin = %+v", snap)
	}
}

func TestLoader_ResetDropsInflight(t *testing.T) {
	g := gatedFetcher{gates: map[string]chan struct{}{"x": make(chan struct{})}}
	l := New(g)
	req := l.Begin(context.Background(), "x")
	l.Reset()
	close(g.gates["x"])
	if l.Commit(l.Run(req)) {
		t.Fatal("request committed after Reset")
	}
	if l.Snapshot().State != Idle {
		t.Fatalf("State = %v, want idle", l.Snapshot().State)
	}
}
