// Package web provides a local read-only web view of a zettel vault.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/render"
	"github.com/sgx-labs/zettel/internal/store"
)

// Server serves notes from an in-memory index. The index may be refilled
// while serving; every handler reads through the store.
type Server struct {
	db      *store.DB
	version string
	root    string
	log     *zap.Logger
}

// New returns a Server over db. root is shown for orientation only.
func New(db *store.DB, version, root string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{db: db, version: version, root: root, log: log}
}

// Handler returns the routed handler with localhost and header middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/notes/", s.handleNotePage) // /notes/{name}
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/notes", s.handleAllNotes)
	mux.HandleFunc("/api/notes/", s.handleNoteByName) // /api/notes/{name}
	mux.HandleFunc("/api/backlinks/", s.handleBacklinks)
	mux.HandleFunc("/api/search", s.handleSearch)
	return localhostOnly(securityHeaders(mux))
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("web view listening", zap.String("addr", listener.Addr().String()))
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// --- Middleware ---

func localhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.Trim(host, "[]")

		if host == "localhost" {
			next.ServeHTTP(w, r)
			return
		}
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
		next.ServeHTTP(w, r)
	})
}

// --- Pages ---

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem}
.meta{color:#666;font-size:.9em}</style></head>
<body>
{{if .Note}}<p><a href="/">&larr; all notes</a></p>
<h1>{{.Note.Name}}</h1>
<p class="meta">{{.Note.Metadata.Kind}} &middot; {{.Note.Metadata.Scope}} &middot; created {{.Note.Metadata.Created}} &middot; modified {{.Note.Metadata.Modified}}{{with .Note.Metadata.SourceOrEmpty}} &middot; source {{.}}{{end}}</p>
{{.Body}}
{{if .Backlinks}}<h2>Linked from</h2><ul>{{range .Backlinks}}<li><a href="/notes/{{.From}}">{{.From}}</a></li>{{end}}</ul>{{end}}
{{else}}<h1>{{.Title}}</h1>
<p class="meta">{{.Root}} &middot; zettel {{.Version}}</p>
<ul>{{range .Notes}}<li><a href="/notes/{{.Name}}">{{.Name}}</a> <span class="meta">{{.Metadata.Kind}} &middot; {{.Metadata.Scope}}</span></li>{{else}}<li>No notes.</li>{{end}}</ul>
{{end}}
</body></html>
`))

type pageData struct {
	Title     string
	Root      string
	Version   string
	Notes     []note.Note
	Note      *note.Note
	Body      template.HTML
	Backlinks []store.Backlink
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	notes, err := s.db.ListNotes(store.Filter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, pageData{Title: "Notes", Root: s.root, Version: s.version, Notes: notes})
}

func (s *Server) handleNotePage(w http.ResponseWriter, r *http.Request) {
	name, ok := noteName(r.URL.EscapedPath(), "/notes/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	n, found, err := s.db.NoteByName(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	body, err := render.HTML(n.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	back, err := s.db.Backlinks(name)
	if err != nil {
		s.log.Warn("load backlinks", zap.String("note", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, pageData{
		Title:     n.Name,
		Note:      &n,
		Body:      template.HTML(rewriteLinkTargets(body)),
		Backlinks: back,
	})
}

func (s *Server) writePage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.Warn("render page", zap.Error(err))
	}
}

// rewriteLinkTargets points relative note links at the note pages. Links in
// a vault usually omit the extension, so ".md" is added when missing.
func rewriteLinkTargets(html string) string {
	const marker = `<a href="`
	var b strings.Builder
	rest := html
	for {
		i := strings.Index(rest, marker)
		if i < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i+len(marker)])
		rest = rest[i+len(marker):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		href := rest[:end]
		if !strings.Contains(href, ":") && !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "#") {
			if !strings.HasSuffix(href, ".md") {
				href += ".md"
			}
			href = "/notes/" + href
		}
		b.WriteString(href)
		rest = rest[end:]
	}
}

// --- API ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	noteCount, err := s.db.NoteCount()
	if err != nil {
		s.log.Warn("count notes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byKind, err := s.db.CountByKind()
	if err != nil {
		s.log.Warn("count notes by type", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{
		"note_count":    noteCount,
		"notes_by_type": byKind,
		"version":       s.version,
		"root":          s.root,
	})
}

func (s *Server) handleAllNotes(w http.ResponseWriter, r *http.Request) {
	f := store.Filter{Scope: r.URL.Query().Get("scope")}
	if t := r.URL.Query().Get("type"); t != "" {
		k, err := note.ParseKind(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Kind = &k
	}
	notes, err := s.db.ListNotes(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if notes == nil {
		notes = []note.Note{}
	}
	writeJSON(w, notes)
}

func (s *Server) handleNoteByName(w http.ResponseWriter, r *http.Request) {
	name, ok := noteName(r.URL.EscapedPath(), "/api/notes/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note name")
		return
	}
	n, found, err := s.db.NoteByName(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, n)
}

func (s *Server) handleBacklinks(w http.ResponseWriter, r *http.Request) {
	name, ok := noteName(r.URL.EscapedPath(), "/api/backlinks/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid note name")
		return
	}
	back, err := s.db.Backlinks(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if back == nil {
		back = []store.Backlink{}
	}
	writeJSON(w, back)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" || len(query) > 10000 {
		writeError(w, http.StatusBadRequest, "missing or oversized query")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	results, err := s.db.KeywordSearch(store.ExtractSearchTerms(query), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	writeJSON(w, results)
}

// noteName extracts a flat file name after prefix. Names with separators and
// the "." and ".." entries are rejected; the vault has no subdirectories.
// Dotfiles are valid notes.
func noteName(path, prefix string) (string, bool) {
	raw := strings.TrimPrefix(path, prefix)
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", false
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
