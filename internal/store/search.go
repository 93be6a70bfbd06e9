package store

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SearchResult is one keyword hit.
type SearchResult struct {
	Name    string `json:"name"`
	Scope   string `json:"scope"`
	Kind    string `json:"type"`
	Snippet string `json:"snippet"`
	Matches int    `json:"matches"`
}

// MaxSnippetLength caps the body excerpt returned with each result.
const MaxSnippetLength = 300

// KeywordSearch ranks notes by how many terms appear in their name or body.
// Matching is case-insensitive; ties keep listing order.
func (db *DB) KeywordSearch(terms []string, limit int) ([]SearchResult, error) {
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	var matchExprs, conditions []string
	var matchArgs, condArgs []interface{}
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		matchExprs = append(matchExprs,
			`(CASE WHEN LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(body) LIKE LOWER(?) ESCAPE '\' THEN 1 ELSE 0 END)`)
		matchArgs = append(matchArgs, pattern, pattern)
		conditions = append(conditions,
			`(LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(body) LIKE LOWER(?) ESCAPE '\')`)
		condArgs = append(condArgs, pattern, pattern)
	}
	scoreExpr := strings.Join(matchExprs, " + ")

	query := fmt.Sprintf(`
		SELECT name, scope, kind, body, (%s) AS score
		FROM notes
		WHERE %s
		ORDER BY score DESC, position
		LIMIT ?`,
		scoreExpr, strings.Join(conditions, " OR "))

	var args []interface{}
	args = append(args, matchArgs...)
	args = append(args, condArgs...)
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var body string
		if err := rows.Scan(&r.Name, &r.Scope, &r.Kind, &body, &r.Matches); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Snippet = snippet(body, terms)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ExtractSearchTerms splits a query into lowercase, de-duplicated terms,
// dropping punctuation and single characters.
func ExtractSearchTerms(query string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(query) {
		lower := strings.ToLower(w)
		lower = strings.Trim(lower, ".,;:!?\"'()[]{}")
		if len(lower) < 2 || seen[lower] {
			continue
		}
		seen[lower] = true
		terms = append(terms, lower)
	}
	return terms
}

// snippet returns a window of body around the first term that appears in it.
func snippet(body string, terms []string) string {
	start := 0
	for _, t := range terms {
		if i := indexFold(body, t); i >= 0 {
			start = i - MaxSnippetLength/4
			break
		}
	}
	if start < 0 {
		start = 0
	}
	if start > len(body) {
		start = len(body)
	}
	r := []rune(body[clampToRune(body, start):])
	if len(r) > MaxSnippetLength {
		r = r[:MaxSnippetLength]
	}
	return strings.TrimSpace(string(r))
}

// indexFold returns the byte offset in s of the first case-insensitive
// match of substr, or -1. Offsets always refer to s itself, since case
// mapping can change the byte length of a rune.
func indexFold(s, substr string) int {
	n := utf8.RuneCountInString(substr)
	if n == 0 {
		return 0
	}
	for i := range s {
		end, count := i, 0
		for end < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		if count < n {
			return -1
		}
		if strings.EqualFold(s[i:end], substr) {
			return i
		}
	}
	return -1
}

// clampToRune moves i back to the start of a UTF-8 sequence.
func clampToRune(s string, i int) int {
	for i > 0 && i < len(s) && s[i]&0xC0 == 0x80 {
		i--
	}
	return i
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
