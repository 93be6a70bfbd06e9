// Package store provides an in-memory SQLite index over loaded notes.
// Nothing is written to disk; the index lives as long as the process.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex // serialize writes
}

// OpenMemory opens an empty in-memory index.
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Each pooled connection would get its own private :memory: database.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			source TEXT,
			scope TEXT NOT NULL,
			kind TEXT NOT NULL,
			created TEXT NOT NULL,
			modified TEXT NOT NULL,
			body TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_scope ON notes(scope)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_kind ON notes(kind)`,

		`CREATE TABLE IF NOT EXISTS links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_name TEXT NOT NULL REFERENCES notes(name) ON DELETE CASCADE,
			target TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_links_target ON links(target)`,
		`CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_name)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(m), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
