// Package cache persists resolved BibTeX records so repeated lookups skip
// the network.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pybib/pybib/internal/identifier"
)

// Cache wraps a SQLite database of resolved lookups keyed by identifier.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database under dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "lookups.db"))
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS lookups (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			entry TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (kind, id)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached BibTeX text for an identifier, or ok=false on a
// miss. Cache errors surface as misses so a corrupt cache never blocks a
// lookup.
func (c *Cache) Get(id identifier.Identifier) (string, bool) {
	var entry string
	err := c.db.QueryRow(
		"SELECT entry FROM lookups WHERE kind = ? AND id = ?",
		string(id.Kind), id.Value,
	).Scan(&entry)
	if err != nil {
		return "", false
	}
	return entry, true
}

// Put stores the BibTeX text for an identifier, replacing any prior record.
func (c *Cache) Put(id identifier.Identifier, entry string) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO lookups (kind, id, entry, fetched_at) VALUES (?, ?, ?, ?)",
		string(id.Kind), id.Value, entry, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("caching %s: %w", id.Value, err)
	}
	return nil
}
