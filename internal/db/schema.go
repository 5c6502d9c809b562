package db

const schema = `
-- Valuation lookup option lists, keyed by cascade path
CREATE TABLE IF NOT EXISTS fipe_options (
    key TEXT PRIMARY KEY,
    payload BLOB NOT NULL,
    fetched_at DATETIME NOT NULL
);
`
