// Package mcp implements the read-only MCP server for a zettel vault.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mdombrov-33/go-promptguard/detector"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/store"
	"github.com/sgx-labs/zettel/internal/vault"
)

// promptGuard screens search snippets before they reach the agent.
// Pattern and statistical detectors only; no LLM judge.
var promptGuard = detector.New(
	detector.WithThreshold(0.6),
	detector.WithAllDetectors(),
	detector.WithMaxInputLength(1000),
)

const filteredSnippet = "[content filtered for security]"

// Options configures a Server.
type Options struct {
	Version        string
	ReloadCooldown time.Duration
	Logger         *zap.Logger
}

// Server answers MCP tool calls from an in-memory index of the vault.
type Server struct {
	loader   *vault.Loader
	db       *store.DB
	log      *zap.Logger
	version  string
	cooldown time.Duration

	mu         sync.Mutex // guards reloads
	lastReload time.Time
	stats      vault.Stats
	notes      []note.Note
}

// NewServer scans the vault once and builds the index.
func NewServer(ctx context.Context, loader *vault.Loader, opts Options) (*Server, error) {
	db, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	s := &Server{
		loader:   loader,
		db:       db,
		log:      opts.Logger,
		version:  opts.Version,
		cooldown: opts.ReloadCooldown,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.version == "" {
		s.version = "dev"
	}
	if err := s.reload(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the index.
func (s *Server) Close() error {
	return s.db.Close()
}

// Serve runs the MCP server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "zettel",
		Version: s.version,
	}, nil)
	s.registerTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) reload(ctx context.Context) error {
	notes, stats, err := s.loader.LoadWithStats(ctx)
	if err != nil {
		return fmt.Errorf("load vault: %w", err)
	}
	if err := s.db.ReplaceNotes(notes); err != nil {
		return fmt.Errorf("index notes: %w", err)
	}
	s.notes = notes
	s.stats = stats
	s.lastReload = time.Now()
	s.log.Info("vault indexed",
		zap.String("root", s.loader.Root()),
		zap.Int("parsed", stats.Parsed),
		zap.Int("skipped", stats.Skipped))
	return nil
}

func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List notes in the vault with their metadata. Optionally filter by scope or type.\n\nArgs:\n  scope: Exact scope tag (e.g. 'project')\n  type: 'main' or 'source'\n\nReturns name, scope, type, created and modified for each note.",
	}, s.handleListNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_note",
		Description: "Read one note by file name. Wiki-links in the body are returned as markdown links.\n\nArgs:\n  name: Exact file name (e.g. 'atomic-notes.md')\n\nReturns metadata, body and outgoing links.",
	}, s.handleGetNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_backlinks",
		Description: "Find notes that link to the given note.\n\nArgs:\n  name: File name of the target note\n\nReturns the linking notes and the label they used.",
	}, s.handleFindBacklinks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_notes",
		Description: "Keyword search over note names and bodies.\n\nArgs:\n  query: Words to look for\n  limit: Number of results (default 10, max 100)\n\nReturns ranked notes with a body snippet.",
	}, s.handleSearchNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reload",
		Description: "Re-scan the vault directory. Use this after notes were added or edited.\n\nReturns scan statistics.",
	}, s.handleReload)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vault_stats",
		Description: "Report how many files were scanned, parsed and skipped, note counts per type, and links pointing at notes that do not exist.",
	}, s.handleVaultStats)
}

// Tool input types

type listInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"Exact scope tag to filter by"`
	Type  string `json:"type,omitempty" jsonschema:"Note type: main or source"`
}

type nameInput struct {
	Name string `json:"name" jsonschema:"Exact note file name"`
}

type searchInput struct {
	Query string `json:"query" jsonschema:"Words to look for"`
	Limit int    `json:"limit,omitempty" jsonschema:"Number of results (default 10, max 100)"`
}

type emptyInput struct{}

// Tool handlers

type noteSummary struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`
	Created  string `json:"created"`
	Modified string `json:"modified"`
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	f := store.Filter{Scope: strings.TrimSpace(input.Scope)}
	if t := strings.TrimSpace(input.Type); t != "" {
		k, err := note.ParseKind(t)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil, nil
		}
		f.Kind = &k
	}

	notes, err := s.db.ListNotes(f)
	if err != nil {
		return textResult(fmt.Sprintf("List error: %v", err)), nil, nil
	}
	if len(notes) == 0 {
		return textResult("No notes found."), nil, nil
	}

	out := make([]noteSummary, len(notes))
	for i, n := range notes {
		out[i] = summarize(n)
	}
	return jsonResult(out), nil, nil
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest, input nameInput) (*mcp.CallToolResult, any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return textResult("Error: name is required."), nil, nil
	}

	n, ok, err := s.db.NoteByName(name)
	if err != nil {
		return textResult(fmt.Sprintf("Lookup error: %v", err)), nil, nil
	}
	if !ok {
		s.mu.Lock()
		suggestions := note.Suggest(s.notes, name, 5)
		s.mu.Unlock()
		msg := fmt.Sprintf("Note not found: %s.", name)
		if len(suggestions) > 0 {
			msg += " Did you mean: " + strings.Join(suggestions, ", ") + "?"
		}
		return textResult(msg), nil, nil
	}
	return jsonResult(n), nil, nil
}

func (s *Server) handleFindBacklinks(ctx context.Context, req *mcp.CallToolRequest, input nameInput) (*mcp.CallToolResult, any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return textResult("Error: name is required."), nil, nil
	}
	back, err := s.db.Backlinks(name)
	if err != nil {
		return textResult(fmt.Sprintf("Backlink error: %v", err)), nil, nil
	}
	if len(back) == 0 {
		return textResult(fmt.Sprintf("No notes link to %s.", name)), nil, nil
	}
	return jsonResult(back), nil, nil
}

func (s *Server) handleSearchNotes(ctx context.Context, req *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
	terms := store.ExtractSearchTerms(input.Query)
	if len(terms) == 0 {
		return textResult("Error: query has no searchable terms."), nil, nil
	}
	results, err := s.db.KeywordSearch(terms, clampLimit(input.Limit, 10))
	if err != nil {
		return textResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}
	if len(results) == 0 {
		return textResult("No results found."), nil, nil
	}
	for i := range results {
		results[i].Snippet = sanitizeSnippet(ctx, results[i].Snippet)
	}
	return jsonResult(results), nil, nil
}

func (s *Server) handleReload(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if since := time.Since(s.lastReload); since < s.cooldown {
		remaining := int((s.cooldown - since).Seconds()) + 1
		return jsonResult(map[string]string{
			"error": fmt.Sprintf("Reload cooldown active. Try again in %ds.", remaining),
		}), nil, nil
	}
	if err := s.reload(ctx); err != nil {
		return textResult(fmt.Sprintf("Reload error: %v", err)), nil, nil
	}
	return jsonResult(s.stats), nil, nil
}

func (s *Server) handleVaultStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()

	byKind, err := s.db.CountByKind()
	if err != nil {
		return textResult(fmt.Sprintf("Stats error: %v", err)), nil, nil
	}
	dangling, err := s.db.DanglingLinks()
	if err != nil {
		return textResult(fmt.Sprintf("Stats error: %v", err)), nil, nil
	}
	return jsonResult(map[string]any{
		"root":           s.loader.Root(),
		"scan":           stats,
		"notes_by_type":  byKind,
		"dangling_links": dangling,
	}), nil, nil
}

// Helpers

func summarize(n note.Note) noteSummary {
	return noteSummary{
		Name:     n.Name,
		Scope:    n.Metadata.Scope,
		Type:     n.Metadata.Kind.String(),
		Source:   n.Metadata.SourceOrEmpty(),
		Created:  n.Metadata.Created,
		Modified: n.Metadata.Modified,
	}
}

func sanitizeSnippet(ctx context.Context, text string) string {
	if text == "" {
		return text
	}
	if result := promptGuard.Detect(ctx, text); !result.Safe {
		return filteredSnippet
	}
	return text
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textResult(fmt.Sprintf("Encode error: %v", err))
	}
	return textResult(string(data))
}

func clampLimit(limit, defaultVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit > 100 {
		return 100
	}
	return limit
}
