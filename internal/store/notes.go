package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sgx-labs/zettel/internal/note"
)

// Filter narrows ListNotes. Zero fields match everything.
type Filter struct {
	Scope string
	Kind  *note.Kind
}

// ReplaceNotes swaps the whole index for the given notes in one transaction.
// Listing order is preserved in the position column.
func (db *DB) ReplaceNotes(notes []note.Note) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM links`); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}

	noteStmt, err := tx.Prepare(`
		INSERT INTO notes (name, position, source, scope, kind, created, modified, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare note stmt: %w", err)
	}
	defer noteStmt.Close()

	linkStmt, err := tx.Prepare(`INSERT INTO links (from_name, target, label) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare link stmt: %w", err)
	}
	defer linkStmt.Close()

	for i, n := range notes {
		var source sql.NullString
		if n.Metadata.Source != nil {
			source = sql.NullString{String: *n.Metadata.Source, Valid: true}
		}
		if _, err := noteStmt.Exec(
			n.Name, i, source, n.Metadata.Scope, n.Metadata.Kind.String(),
			n.Metadata.Created, n.Metadata.Modified, n.Body,
		); err != nil {
			return fmt.Errorf("insert note %s: %w", n.Name, err)
		}
		for _, l := range n.Links {
			if _, err := linkStmt.Exec(n.Name, l.Target, l.Label); err != nil {
				return fmt.Errorf("insert link %s -> %s: %w", n.Name, l.Target, err)
			}
		}
	}

	return tx.Commit()
}

// NoteByName returns the note with the exact name, or false if absent.
// Unlike ListNotes, the returned note carries its outgoing links.
func (db *DB) NoteByName(name string) (note.Note, bool, error) {
	row := db.conn.QueryRow(`
		SELECT name, source, scope, kind, created, modified, body
		FROM notes WHERE name = ?`, name)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return note.Note{}, false, nil
	}
	if err != nil {
		return note.Note{}, false, fmt.Errorf("note by name: %w", err)
	}
	if n.Links, err = db.OutgoingLinks(name); err != nil {
		return note.Note{}, false, err
	}
	return n, true, nil
}

// ListNotes returns notes in listing order, optionally filtered.
func (db *DB) ListNotes(f Filter) ([]note.Note, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Scope != "" {
		conds = append(conds, "scope = ?")
		args = append(args, f.Scope)
	}
	if f.Kind != nil {
		conds = append(conds, "kind = ?")
		args = append(args, f.Kind.String())
	}
	query := `SELECT name, source, scope, kind, created, modified, body FROM notes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY position"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// NoteCount returns the number of indexed notes.
func (db *DB) NoteCount() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n)
	return n, err
}

// CountByKind returns the number of notes per serialized kind.
func (db *DB) CountByKind() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT kind, COUNT(*) FROM notes GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (note.Note, error) {
	var (
		n      note.Note
		source sql.NullString
		kind   string
	)
	if err := row.Scan(&n.Name, &source, &n.Metadata.Scope, &kind,
		&n.Metadata.Created, &n.Metadata.Modified, &n.Body); err != nil {
		return note.Note{}, err
	}
	k, err := note.ParseKind(kind)
	if err != nil {
		return note.Note{}, err
	}
	n.Metadata.Kind = k
	if source.Valid {
		s := source.String
		n.Metadata.Source = &s
	}
	return n, nil
}
