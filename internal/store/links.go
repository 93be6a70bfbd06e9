package store

import (
	"fmt"

	"github.com/sgx-labs/zettel/internal/note"
)

// Backlink is a link into a note from another note.
type Backlink struct {
	From  string `json:"from"`
	Label string `json:"label,omitempty"`
}

// OutgoingLinks returns the wiki-links written in the named note, in order.
func (db *DB) OutgoingLinks(name string) ([]note.Link, error) {
	rows, err := db.conn.Query(
		`SELECT target, label FROM links WHERE from_name = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("outgoing links: %w", err)
	}
	defer rows.Close()

	var links []note.Link
	for rows.Next() {
		var l note.Link
		if err := rows.Scan(&l.Target, &l.Label); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Backlinks returns the notes linking to target. A link matches when its
// target equals the name exactly or equals it without the ".md" extension,
// since vault links usually omit the extension.
func (db *DB) Backlinks(target string) ([]Backlink, error) {
	rows, err := db.conn.Query(`
		SELECT l.from_name, l.label
		FROM links l JOIN notes n ON n.name = l.from_name
		WHERE l.target = ? OR l.target = ?
		ORDER BY n.position, l.id`,
		target, trimExt(target))
	if err != nil {
		return nil, fmt.Errorf("backlinks: %w", err)
	}
	defer rows.Close()

	var out []Backlink
	for rows.Next() {
		var b Backlink
		if err := rows.Scan(&b.From, &b.Label); err != nil {
			return nil, fmt.Errorf("scan backlink: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DanglingLinks returns link targets that match no indexed note, keyed by
// the note that contains them.
func (db *DB) DanglingLinks() (map[string][]string, error) {
	rows, err := db.conn.Query(`
		SELECT l.from_name, l.target
		FROM links l
		WHERE NOT EXISTS (
			SELECT 1 FROM notes n WHERE n.name = l.target OR n.name = l.target || '.md'
		)
		ORDER BY l.id`)
	if err != nil {
		return nil, fmt.Errorf("dangling links: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var from, target string
		if err := rows.Scan(&from, &target); err != nil {
			return nil, fmt.Errorf("scan dangling link: %w", err)
		}
		out[from] = append(out[from], target)
	}
	return out, rows.Err()
}

func trimExt(name string) string {
	if len(name) > 3 && name[len(name)-3:] == ".md" {
		return name[:len(name)-3]
	}
	return name
}
