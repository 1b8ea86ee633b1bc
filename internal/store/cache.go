// Package store keeps imported spending datasets in SQLite so the CLI, TUI
// and server can run without the dashboard's data host.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/spendviz/internal/loader"
	"github.com/theirongolddev/spendviz/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is a SQLite snapshot store. It implements loader.Fetcher.
type Store struct {
	db *sql.DB
}

var _ loader.Fetcher = (*Store)(nil)

// DefaultDir returns the platform-appropriate cache directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendviz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "spendviz")
}

// DefaultPath returns the full path to the snapshot database.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "snapshots.db")
}

// Open opens or creates the snapshot database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry describes one stored dataset.
type Entry struct {
	Name       string
	Source     string
	Categories int
	Series     int
	ImportedAt time.Time
}

// Save validates ds and replaces any dataset stored under name.
func (s *Store) Save(ctx context.Context, name string, ds model.Dataset, source string) error {
	name, err := loader.NormalizeName(name)
	if err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades clear categories and values.
	if _, err := tx.ExecContext(ctx, "DELETE FROM datasets WHERE name = ?", name); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `INSERT INTO datasets
		(name, source, category_count, series_count, imported_at)
		VALUES (?, ?, ?, ?, ?)`,
		name, source, len(ds.Categories), len(ds.Series), now,
	)
	if err != nil {
		return err
	}

	catStmt, err := tx.PrepareContext(ctx, "INSERT INTO categories (dataset, idx, label) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = catStmt.Close() }()
	for i, c := range ds.Categories {
		if _, err := catStmt.ExecContext(ctx, name, i, c); err != nil {
			return err
		}
	}

	seriesStmt, err := tx.PrepareContext(ctx, "INSERT INTO series (dataset, idx, name) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = seriesStmt.Close() }()
	valStmt, err := tx.PrepareContext(ctx, `INSERT INTO series_values
		(dataset, series_idx, idx, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = valStmt.Close() }()
	for k, ser := range ds.Series {
		if _, err := seriesStmt.ExecContext(ctx, name, k, ser.Name); err != nil {
			return err
		}
		for i, v := range ser.Data {
			if _, err := valStmt.ExecContext(ctx, name, k, i, v); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Fetch rebuilds a stored dataset. A missing name is a fetch failure with
// status 404 so callers treat it like a missing file.
func (s *Store) Fetch(ctx context.Context, name string) (model.Dataset, error) {
	name, err := loader.NormalizeName(name)
	if err != nil {
		return model.Dataset{}, err
	}

	var catCount, seriesCount int
	err = s.db.QueryRowContext(ctx,
		"SELECT category_count, series_count FROM datasets WHERE name = ?", name,
	).Scan(&catCount, &seriesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Dataset{}, &model.FetchError{
			Resource: name,
			Status:   http.StatusNotFound,
			Detail:   http.StatusText(http.StatusNotFound),
		}
	}
	if err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
	}

	ds := model.Dataset{
		Categories: make([]string, catCount),
		Series:     make([]model.Series, seriesCount),
	}
	for k := range ds.Series {
		ds.Series[k].Data = make([]float64, catCount)
	}

	if err := s.readLabels(ctx, name, "SELECT idx, label FROM categories WHERE dataset = ? ORDER BY idx", ds.Categories); err != nil {
		return model.Dataset{}, err
	}
	names := make([]string, seriesCount)
	if err := s.readLabels(ctx, name, "SELECT idx, name FROM series WHERE dataset = ? ORDER BY idx", names); err != nil {
		return model.Dataset{}, err
	}
	for k, n := range names {
		ds.Series[k].Name = n
	}

	vrows, err := s.db.QueryContext(ctx,
		"SELECT series_idx, idx, value FROM series_values WHERE dataset = ? ORDER BY series_idx, idx", name)
	if err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
	}
	defer func() { _ = vrows.Close() }()
	seen := make([]int, seriesCount)
	for vrows.Next() {
		var k, idx int
		var v float64
		if err := vrows.Scan(&k, &idx, &v); err != nil {
			return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
		}
		if k < 0 || k >= seriesCount || idx < 0 || idx >= catCount {
			return model.Dataset{}, &model.ShapeError{Series: name, Reason: "stored value out of range"}
		}
		ds.Series[k].Data[idx] = v
		seen[k]++
	}
	if err := vrows.Err(); err != nil {
		return model.Dataset{}, &model.FetchError{Resource: name, Err: err}
	}
	for k, n := range seen {
		if n != catCount {
			return model.Dataset{}, &model.ShapeError{Series: ds.Series[k].Name, Got: n, Want: catCount}
		}
	}
	return ds, nil
}

// readLabels fills dst[idx] = label from an (idx, label) query.
func (s *Store) readLabels(ctx context.Context, name, query string, dst []string) error {
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return &model.FetchError{Resource: name, Err: err}
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var idx int
		var label string
		if err := rows.Scan(&idx, &label); err != nil {
			return &model.FetchError{Resource: name, Err: err}
		}
		if idx < 0 || idx >= len(dst) {
			return &model.ShapeError{Series: name, Reason: fmt.Sprintf("stored index %d out of range", idx)}
		}
		dst[idx] = label
	}
	if err := rows.Err(); err != nil {
		return &model.FetchError{Resource: name, Err: err}
	}
	return nil
}

// List returns every stored dataset ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, source, category_count, series_count, imported_at FROM datasets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var imported string
		if err := rows.Scan(&e.Name, &e.Source, &e.Categories, &e.Series, &imported); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, imported); err == nil {
			e.ImportedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes a stored dataset. Deleting a missing name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	name, err := loader.NormalizeName(name)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM datasets WHERE name = ?", name)
	return err
}

// Count returns the number of stored datasets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets").Scan(&n)
	return n, err
}
