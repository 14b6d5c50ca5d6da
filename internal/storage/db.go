// Package storage persists transform-run reports in a local SQLite
// database. Only counts and stage names are stored, never message content.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ctxpipe/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS transform_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	changed INTEGER NOT NULL DEFAULT 0,
	messages_removed INTEGER NOT NULL DEFAULT 0,
	tokens_before INTEGER NOT NULL DEFAULT 0,
	tokens_after INTEGER NOT NULL DEFAULT 0,
	replacements INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transform_runs_run_id ON transform_runs(run_id);
`

// DB wraps the database connection.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*DB, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{DB: db, path: expanded}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// WithTx runs fn in a transaction, committing on success and rolling back
// on error.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.DB.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
