package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sgx-labs/zettel/internal/note"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"}, {999, "999"}, {1000, "1,000"}, {1234567, "1,234,567"}, {-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("héllo", 3); got != "hél" {
		t.Errorf("padRight truncation = %q", got)
	}
}

func TestNoteCard(t *testing.T) {
	src := "https://example.com"
	n := note.Note{
		Name: "a.md",
		Metadata: note.Metadata{
			Source: &src, Scope: "project", Kind: note.KindSource,
			Created: "2024-01-01", Modified: "2024-01-02",
		},
		Body: "hello [b](b)\n",
	}
	var buf bytes.Buffer
	NoteCard(&buf, n)
	out := buf.String()
	for _, want := range []string{"a.md", "type:     source", "source:   https://example.com", "hello [b](b)"} {
		if !strings.Contains(out, want) {
			t.Errorf("NoteCard output missing %q:\n%s", want, out)
		}
	}
}

func TestCounts_Sorted(t *testing.T) {
	var buf bytes.Buffer
	Counts(&buf, map[string]int{"read": 1, "decode": 2})
	out := buf.String()
	if strings.Index(out, "decode") > strings.Index(out, "read") {
		t.Errorf("counts not sorted:\n%s", out)
	}
}
