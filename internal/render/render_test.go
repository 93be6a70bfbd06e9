package render

import (
	"strings"
	"testing"

	"github.com/sgx-labs/zettel/internal/note"
)

func TestHTML_RendersNormalizedLinks(t *testing.T) {
	out, err := HTML(note.NormalizeLinks("See [[atomic-notes|atoms]] for more."))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, `<a href="atomic-notes">atoms</a>`) {
		t.Errorf("missing anchor in %q", out)
	}
}

func TestHTML_GFMTable(t *testing.T) {
	out, err := HTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected a table, got %q", out)
	}
}

func TestHTML_DropsRawHTML(t *testing.T) {
	out, err := HTML("<script>alert(1)</script>\n\ntext")
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML should be omitted: %q", out)
	}
}
