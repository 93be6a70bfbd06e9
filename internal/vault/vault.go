// Package vault scans a flat notes directory and parses every file in it.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sgx-labs/zettel/internal/note"
)

// ErrListRoot wraps failures to list the vault directory itself. It is the
// only error that aborts a scan.
var ErrListRoot = errors.New("list vault directory")

// SkipFunc is called once for every file dropped from a scan.
type SkipFunc func(path string, err error)

// Stats summarizes one scan.
type Stats struct {
	Total     int            `json:"total_files"`
	Parsed    int            `json:"parsed"`
	Skipped   int            `json:"skipped"`
	ByClass   map[string]int `json:"skipped_by_class,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// Loader reads notes from one root directory.
type Loader struct {
	root   string
	log    *zap.Logger
	onSkip SkipFunc
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger logs each dropped file at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithSkipHandler registers a callback for dropped files.
func WithSkipHandler(fn SkipFunc) Option {
	return func(ld *Loader) { ld.onSkip = fn }
}

// New returns a Loader for rootDir.
func New(rootDir string, opts ...Option) *Loader {
	ld := &Loader{root: rootDir, log: zap.NewNop()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Root returns the directory the loader scans.
func (l *Loader) Root() string {
	return l.root
}

// Load parses every non-directory entry of the root, in listing order, and
// returns the ones that parsed. Per-file failures are dropped.
func (l *Loader) Load(ctx context.Context) ([]note.Note, error) {
	notes, _, err := l.LoadWithStats(ctx)
	return notes, err
}

// LoadWithStats is like Load but also reports what was skipped and why.
func (l *Loader) LoadWithStats(ctx context.Context) ([]note.Note, Stats, error) {
	stats := Stats{
		ByClass:   make(map[string]int),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	paths, err := l.listFiles()
	if err != nil {
		return nil, stats, err
	}
	stats.Total = len(paths)

	notes := make([]note.Note, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		n, err := ReadNote(p)
		if err != nil {
			stats.Skipped++
			stats.ByClass[note.Classify(err)]++
			l.skip(p, err)
			continue
		}
		notes = append(notes, n)
	}
	stats.Parsed = len(notes)
	return notes, stats, nil
}

func (l *Loader) skip(path string, err error) {
	l.log.Debug("skipped file",
		zap.String("path", path),
		zap.String("class", note.Classify(err)),
		zap.Error(err))
	if l.onSkip != nil {
		l.onSkip(path, err)
	}
}

// listFiles returns the paths of the root's immediate non-directory entries.
// Symlinks are followed to decide whether they point at a directory.
func (l *Loader) listFiles() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrListRoot, l.root, err)
	}

	var files []string
	for _, e := range entries {
		path := filepath.Join(l.root, e.Name())
		if e.IsDir() {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				continue
			}
		}
		files = append(files, path)
	}
	return files, nil
}

// ReadNote reads and parses a single file. The file handle is released
// before returning on every path.
func ReadNote(path string) (note.Note, error) {
	name := filepath.Base(path)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return note.Note{}, fmt.Errorf("%w: %q", note.ErrMissingName, path)
	}

	content, err := readFile(path)
	if err != nil {
		return note.Note{}, err
	}

	n, err := note.Parse(name, content)
	if err != nil {
		return note.Note{}, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", note.ErrRead, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", note.ErrRead, path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s: not valid UTF-8", note.ErrRead, path)
	}
	return string(data), nil
}
