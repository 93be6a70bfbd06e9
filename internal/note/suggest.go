package note

import (
	"github.com/sahilm/fuzzy"
)

// Suggest returns up to max note names that fuzzy-match name, best first.
func Suggest(notes []Note, name string, max int) []string {
	if name == "" || max <= 0 {
		return nil
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Name
	}
	matches := fuzzy.Find(name, names)
	var out []string
	for _, m := range matches {
		if len(out) >= max {
			break
		}
		out = append(out, names[m.Index])
	}
	return out
}
