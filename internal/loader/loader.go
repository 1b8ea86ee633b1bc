package loader

import (
	"context"
	"sync"
	"time"

	"github.com/theirongolddev/spendviz/internal/model"
)

// State is the lifecycle of a loader.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Snapshot is a consistent view of a loader. Dataset is set only when
// Loaded; Err and Message only when Failed.
type Snapshot struct {
	State      State
	Resource   string
	Dataset    model.Dataset
	Err        error
	Message    string
	Generation uint64
	Elapsed    time.Duration
}

// Request is an issued fetch. Only the loader's latest request may commit.
type Request struct {
	Generation uint64
	Resource   string
	ctx        context.Context
	started    time.Time
}

// Context is cancelled when a newer request supersedes this one.
func (r Request) Context() context.Context { return r.ctx }

// Result is the outcome of running a Request.
type Result struct {
	Generation uint64
	Resource   string
	Dataset    model.Dataset
	Err        error
	Elapsed    time.Duration
}

// Loader drives one panel's Idle -> Loading -> Loaded|Failed lifecycle.
// It is safe for concurrent use; Run may be called off the UI goroutine.
type Loader struct {
	fetcher Fetcher

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	snap   Snapshot
}

// New returns an idle loader backed by f.
func New(f Fetcher) *Loader {
	return &Loader{fetcher: f}
}

// Begin issues a new request. The previous in-flight request, if any, is
// cancelled and can no longer commit. Any prior dataset is discarded.
func (l *Loader) Begin(ctx context.Context, resource string) Request {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	rctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.snap = Snapshot{State: Loading, Resource: resource, Generation: l.gen}

	return Request{Generation: l.gen, Resource: resource, ctx: rctx, started: time.Now()}
}

// Run performs the fetch for req. It blocks and touches no loader state.
func (l *Loader) Run(req Request) Result {
	ctx := req.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := l.fetcher.Fetch(ctx, req.Resource)
	return Result{
		Generation: req.Generation,
		Resource:   req.Resource,
		Dataset:    ds,
		Err:        err,
		Elapsed:    time.Since(req.started),
	}
}

// Commit publishes res if it belongs to the latest request and reports
// whether it did. Stale results are dropped.
func (l *Loader) Commit(res Result) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Generation != l.gen || l.snap.State != Loading {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	snap := Snapshot{Resource: res.Resource, Generation: res.Generation, Elapsed: res.Elapsed}
	if res.Err != nil {
		snap.State = Failed
		snap.Err = res.Err
		snap.Message = res.Err.Error()
		if snap.Message == "" {
			snap.Message = "unknown error"
		}
	} else {
		snap.State = Loaded
		snap.Dataset = res.Dataset
	}
	l.snap = snap
	return true
}

// Load runs a full request synchronously and returns the resulting snapshot.
func (l *Loader) Load(ctx context.Context, resource string) Snapshot {
	req := l.Begin(ctx, resource)
	l.Commit(l.Run(req))
	return l.Snapshot()
}

// Reset cancels any in-flight request and returns to Idle.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.snap = Snapshot{Generation: l.gen}
}

// Snapshot returns the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}
