// Package watcher monitors a vault directory and reloads it when files change.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/vault"
)

// DefaultDebounce is how long the watcher waits after the last event before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives the result of every reload.
type ReloadFunc func(notes []note.Note, stats vault.Stats)

// Options tunes Watch. Zero values use the defaults.
type Options struct {
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watch reloads the vault whenever a file in its root changes, calling
// onReload after each reload. The vault is flat, so only the root itself is
// watched. It blocks until ctx is done.
func Watch(ctx context.Context, loader *vault.Loader, opts Options, onReload ReloadFunc) error {
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(loader.Root()); err != nil {
		return fmt.Errorf("watch %s: %w", loader.Root(), err)
	}
	log.Info("watching vault", zap.String("root", loader.Root()))

	reload := func() {
		if ctx.Err() != nil {
			return
		}
		notes, stats, err := loader.LoadWithStats(ctx)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		log.Debug("vault reloaded",
			zap.Int("parsed", stats.Parsed),
			zap.Int("skipped", stats.Skipped))
		onReload(notes, stats)
	}
	d := newDebouncer(delay, reload)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			d.trigger()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// debouncer runs fn once events have been quiet for delay. Runs never
// overlap: a reload that fires while another is still loading waits for it.
type debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex // guards timer
	timer *time.Timer
	run   sync.Mutex // held while fn runs
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.run.Lock()
	defer d.run.Unlock()
	d.fn()
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// relevant reports whether an event can change the loaded collection.
// Chmod alone cannot, and editor swap files are noise.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case strings.HasPrefix(base, ".#"),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"):
		return false
	}
	return true
}
