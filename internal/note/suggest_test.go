package note

import "testing"

func TestSuggest(t *testing.T) {
	notes := []Note{{Name: "website-parser-test.md"}, {Name: "reading-list.md"}, {Name: "parser.md"}}

	got := Suggest(notes, "parser", 5)
	if len(got) != 2 {
		t.Fatalf("Suggest(parser) = %v, want 2 matches", got)
	}
	for _, name := range got {
		if name == "reading-list.md" {
			t.Errorf("unexpected suggestion %q", name)
		}
	}

	if got := Suggest(notes, "parser", 1); len(got) != 1 {
		t.Errorf("max=1 returned %v", got)
	}
	if got := Suggest(notes, "", 5); got != nil {
		t.Errorf("empty query returned %v", got)
	}
	if got := Suggest(notes, "qqqq", 5); len(got) != 0 {
		t.Errorf("no-match query returned %v", got)
	}
}
