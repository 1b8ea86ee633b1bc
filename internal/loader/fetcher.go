// Package loader fetches spending datasets and tracks the lifecycle of each
// request so that only the most recent one can publish its result.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/theirongolddev/spendviz/internal/model"
)

const (
	// DefaultTimeout bounds a single HTTP fetch.
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	userAgent      = "github.com/theirongolddev/spendviz/1.0"
)

// Fetcher retrieves a dataset by resource name, e.g. "by_region".
type Fetcher interface {
	Fetch(ctx context.Context, name string) (model.Dataset, error)
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// NormalizeName accepts "by_region", "by_region.json" or "/data/by_region.json"
// and returns "by_region".
func NormalizeName(name string) (string, error) {
	n := path.Base(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, ".json")
	if !validName.MatchString(n) {
		return "", &model.FetchError{Resource: name, Detail: "invalid resource name"}
	}
	return n, nil
}

// decode parses and validates a dataset body. Shape problems keep their
// kind; anything else is a fetch failure.
func decode(name string, body []byte) (model.Dataset, error) {
	var ds model.Dataset
	if err := json.Unmarshal(body, &ds); err != nil {
		if errors.Is(err, model.ErrShapeMismatch) {
			return model.Dataset{}, fmt.Errorf("%s: %w", name, err)
		}
		return model.Dataset{}, &model.FetchError{Resource: name, Detail: "invalid JSON", Err: err}
	}
	if err := ds.Validate(); err != nil {
		return model.Dataset{}, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}

// HTTPFetcher reads {BaseURL}/data/{name}.json.
type HTTPFetcher struct {
	BaseURL string
	Timeout time.Duration
	http    *http.Client
}

// NewHTTPFetcher returns a fetcher for the dashboard at baseURL.
// A zero timeout selects DefaultTimeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		http:    &http.Client{},
	}
}

// URL returns the address a resource is fetched from.
func (f *HTTPFetcher) URL(name string) string {
	return f.BaseURL + "/data/" + url.PathEscape(name) + ".json"
}

// Fetch performs the GET and decodes the body.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) (model.Dataset, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return model.Dataset{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(name), nil)
	if err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Detail: "creating request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	//nolint:gosec // URL is built from configured base URL and a validated name
	resp, err := f.http.Do(req)
	if err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Dataset{}, &model.FetchError{
			Resource: name,
			Status:   resp.StatusCode,
			Detail:   http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Detail: "reading response", Err: err}
	}
	return decode(name, body)
}

// DirFetcher reads {Root}/{name}.json from a local data directory.
type DirFetcher struct {
	Root string
}

// Fetch reads and decodes the file.
func (f DirFetcher) Fetch(ctx context.Context, name string) (model.Dataset, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return model.Dataset{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
	}

	body, err := os.ReadFile(filepath.Join(f.Root, name+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Dataset{}, &model.FetchError{
				Resource: name,
				Status:   http.StatusNotFound,
				Detail:   http.StatusText(http.StatusNotFound),
				Err:      err,
			}
		}
		return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
	}
	return decode(name, body)
}

// List returns the resource names available in the directory.
func (f DirFetcher) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(f.Root, "*.json"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	return names, nil
}
