package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var notes []note.Note
	for name, content := range map[string]string{
		"a.md": "---\nscope: project\ntype: main\ncreated: c\nmodified: m\n---\nsee [[b|Bee]] and <script>x</script>\n",
		".hidden.md": "---\nscope: private\ntype: main\ncreated: c\nmodified: m\n---\nhidden body\n",
		"b.md": "---\nsource: https://example.com\nscope: web\ntype: source\ncreated: c\nmodified: m\n---\nbee body\n",
	} {
		n, err := note.Parse(name, content)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		notes = append(notes, n)
	}
	if err := db.ReplaceNotes(notes); err != nil {
		t.Fatalf("ReplaceNotes: %v", err)
	}
	return New(db, "vtest", "/tmp/vault", nil)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = "localhost:4078"
	h.ServeHTTP(rr, req)
	return rr
}

func TestLocalhostOnly_RejectsOtherHosts(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Host = "evil.example.com"
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := get(t, newTestServer(t).Handler(), "/api/status")
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("missing X-Frame-Options")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing X-Content-Type-Options")
	}
}

func TestHandleStatus(t *testing.T) {
	rr := get(t, newTestServer(t).Handler(), "/api/status")
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["version"] != "vtest" {
		t.Errorf("version = %#v", payload["version"])
	}
	if payload["note_count"] != float64(3) {
		t.Errorf("note_count = %#v", payload["note_count"])
	}
}

func TestHandleAllNotes_Filter(t *testing.T) {
	h := newTestServer(t).Handler()

	rr := get(t, h, "/api/notes?type=source")
	var notes []note.Note
	if err := json.NewDecoder(rr.Body).Decode(&notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 1 || notes[0].Name != "b.md" {
		t.Errorf("notes = %+v", notes)
	}

	if rr := get(t, h, "/api/notes?type=nope"); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", rr.Code)
	}
}

func TestHandleNoteByName(t *testing.T) {
	h := newTestServer(t).Handler()

	rr := get(t, h, "/api/notes/a.md")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var n note.Note
	if err := json.NewDecoder(rr.Body).Decode(&n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(n.Body, "[Bee](b)") {
		t.Errorf("body = %q", n.Body)
	}

	if rr := get(t, h, "/api/notes/missing.md"); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	for _, target := range []string{"/api/notes/sub%2Fa.md", "/api/notes/..%5Ca.md"} {
		if rr := get(t, h, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

func TestHandleBacklinks(t *testing.T) {
	rr := get(t, newTestServer(t).Handler(), "/api/backlinks/b.md")
	var back []store.Backlink
	if err := json.NewDecoder(rr.Body).Decode(&back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != 1 || back[0].From != "a.md" || back[0].Label != "Bee" {
		t.Errorf("backlinks = %+v", back)
	}
}

func TestHandleSearch(t *testing.T) {
	h := newTestServer(t).Handler()
	rr := get(t, h, "/api/search?q=bee")
	if !strings.Contains(rr.Body.String(), `"name":"b.md"`) {
		t.Errorf("search body = %s", rr.Body.String())
	}
	if rr := get(t, h, "/api/search"); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty query, got %d", rr.Code)
	}
}

func TestNotePage_RendersHTMLAndBacklinks(t *testing.T) {
	h := newTestServer(t).Handler()

	rr := get(t, h, "/notes/a.md")
	body := rr.Body.String()
	if !strings.Contains(body, `<a href="/notes/b.md">Bee</a>`) {
		t.Errorf("link not rewritten:\n%s", body)
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("raw HTML leaked into page:\n%s", body)
	}

	rr = get(t, h, "/notes/b.md")
	body = rr.Body.String()
	if !strings.Contains(body, "Linked from") || !strings.Contains(body, "source https://example.com") {
		t.Errorf("unexpected note page:\n%s", body)
	}
}

func TestIndexPage_ListsNotes(t *testing.T) {
	rr := get(t, newTestServer(t).Handler(), "/")
	body := rr.Body.String()
	if !strings.Contains(body, `href="/notes/a.md"`) || !strings.Contains(body, `href="/notes/b.md"`) {
		t.Errorf("index missing notes:\n%s", body)
	}
	if rr := get(t, newTestServer(t).Handler(), "/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestRewriteLinkTargets(t *testing.T) {
	in := `<a href="b">b</a> <a href="https://x.org">x</a> <a href="c.md">c</a> <a href="#top">t</a>`
	want := `<a href="/notes/b.md">b</a> <a href="https://x.org">x</a> <a href="/notes/c.md">c</a> <a href="#top">t</a>`
	if got := rewriteLinkTargets(in); got != want {
		t.Errorf("rewriteLinkTargets =\n%s\nwant\n%s", got, want)
	}
}

func TestHandleNoteByName_Dotfile(t *testing.T) {
	h := newTestServer(t).Handler()
	if rr := get(t, h, "/api/notes/.hidden.md"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for a dotfile note, got %d", rr.Code)
	}
	if rr := get(t, h, "/notes/.hidden.md"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the dotfile page, got %d", rr.Code)
	}
}

func TestHandleStatus_StoreFailure(t *testing.T) {
	s := newTestServer(t)
	s.db.Close()

	rr := get(t, s.Handler(), "/api/status")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the index is unavailable, got %d", rr.Code)
	}
}

func TestNotePage_StoreFailure(t *testing.T) {
	s := newTestServer(t)
	s.db.Close()

	if rr := get(t, s.Handler(), "/notes/a.md"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the index is unavailable, got %d", rr.Code)
	}
}
