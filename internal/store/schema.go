package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
    name                 TEXT PRIMARY KEY,
    source               TEXT NOT NULL DEFAULT '',
    category_count       INTEGER NOT NULL,
    series_count         INTEGER NOT NULL,
    imported_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    dataset              TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
    idx                  INTEGER NOT NULL,
    label                TEXT NOT NULL,
    PRIMARY KEY (dataset, idx)
);

CREATE TABLE IF NOT EXISTS series (
    dataset              TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
    idx                  INTEGER NOT NULL,
    name                 TEXT NOT NULL,
    PRIMARY KEY (dataset, idx)
);

CREATE TABLE IF NOT EXISTS series_values (
    dataset              TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
    series_idx           INTEGER NOT NULL,
    idx                  INTEGER NOT NULL,
    value                REAL NOT NULL,
    PRIMARY KEY (dataset, series_idx, idx)
);

CREATE INDEX IF NOT EXISTS idx_series_values_dataset ON series_values(dataset);
`
