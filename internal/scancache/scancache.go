// Package scancache persists the results of Bates page scans.
//
// Scanning a PDF for Bates labels reads every page, which is the
// expensive part of a run. The cache keys each scan by the file's
// path, size, and modification time, so repeated runs over an
// unchanged exhibits folder never rescan. The database lives in a
// ".anchor" directory under the exhibits root.
package scancache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Cache is the SQLite-backed scan cache.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache under root. An incompatible schema
// is discarded and recreated; the cache holds nothing that cannot be
// rebuilt by rescanning.
func Open(root string) (*Cache, error) {
	dir := filepath.Join(root, ".anchor")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	dbPath := filepath.Join(dir, "scan.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open scan cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.initialize(); err != nil {
		db.Close()
		if removeErr := os.Remove(dbPath); removeErr == nil {
			// Stale or corrupt schema; start fresh once.
			db, err = sql.Open("sqlite", dbPath)
			if err != nil {
				return nil, fmt.Errorf("reopen scan cache: %w", err)
			}
			c = &Cache{db: db}
			if err := c.initialize(); err != nil {
				db.Close()
				return nil, err
			}
			return c, nil
		}
		return nil, err
	}
	return c, nil
}

func (c *Cache) initialize() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bates_scans (
			path   TEXT PRIMARY KEY,
			size   INTEGER NOT NULL,
			mtime  INTEGER NOT NULL,
			labels TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initialize scan cache: %w", err)
	}

	var version string
	err = c.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = c.db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
		if err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("scan cache schema version %s is not %s", version, schemaVersion)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached label→page map for path, if the cached entry
// still matches the file's size and mtime. A stale entry reports not
// found.
func (c *Cache) Get(path string, size, mtime int64) (map[string]int, bool, error) {
	var (
		gotSize, gotMtime int64
		raw               string
	)
	err := c.db.QueryRow(
		`SELECT size, mtime, labels FROM bates_scans WHERE path = ?`, path,
	).Scan(&gotSize, &gotMtime, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read scan cache for %s: %w", path, err)
	}
	if gotSize != size || gotMtime != mtime {
		return nil, false, nil
	}

	labels := make(map[string]int)
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return nil, false, fmt.Errorf("decode scan cache for %s: %w", path, err)
	}
	return labels, true, nil
}

// Put stores the label→page map for path, replacing any prior entry.
func (c *Cache) Put(path string, size, mtime int64, labels map[string]int) error {
	raw, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("encode scan cache for %s: %w", path, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO bates_scans (path, size, mtime, labels) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET size = excluded.size, mtime = excluded.mtime, labels = excluded.labels`,
		path, size, mtime, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write scan cache for %s: %w", path, err)
	}
	return nil
}
