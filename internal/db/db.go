package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	dbFile = "cache.db"
)

// DB wraps the lookup cache connection
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (creating if needed) the cache database in dir
func Open(dir string) (*DB, error) {
	dbPath := filepath.Join(dir, dbFile)

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode so a second kadilac process can read while one writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	conn.Exec("PRAGMA synchronous=NORMAL")

	// Single writer; the TUI fires fetches from several goroutines
	conn.SetMaxOpenConns(1)

	return New(conn)
}

// New wraps an already open connection and creates the schema.
func New(conn *sql.DB) (*DB, error) {
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the payload cached under key if it is younger than ttl.
// A miss returns (nil, false, nil).
func (db *DB) Get(key string, ttl time.Duration) ([]byte, bool, error) {
	var payload []byte
	var fetchedAt time.Time
	err := db.conn.QueryRow(
		`SELECT payload, fetched_at FROM fipe_options WHERE key = ?`, key,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	if ttl > 0 && db.now().Sub(fetchedAt) > ttl {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put stores payload under key, replacing any previous entry
func (db *DB) Put(key string, payload []byte) error {
	_, err := db.conn.Exec(
		`INSERT INTO fipe_options (key, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, payload, db.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Purge removes every cached entry and returns how many were removed
func (db *DB) Purge() (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM fipe_options`)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM fipe_options`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}
