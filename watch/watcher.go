// Package watch re-runs ingestion when the documents directory changes.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/docrag/loader"
)

// DefaultDebounce is how long the directory must stay quiet before a run.
const DefaultDebounce = 2 * time.Second

// RunFunc performs one complete ingestion.
type RunFunc func(ctx context.Context) error

// Watcher monitors a directory and calls a RunFunc after matching files are
// created, written or renamed. Bursts of events within the debounce window
// collapse into a single run.
type Watcher struct {
	watcher   *fsnotify.Watcher
	dir       string
	pattern   string
	recursive bool
	debounce  time.Duration
	run       RunFunc
	logger    *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a run. Default is DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger.With("component", "watch")
		}
	}
}

// New creates a watcher over dir for files matching the doublestar pattern.
// Subdirectories are watched only when the pattern contains "**".
func New(dir, pattern string, run RunFunc, opts ...Option) (*Watcher, error) {
	if run == nil {
		return nil, errors.New("watch: run function required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: dir, Err: fs.ErrInvalid}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:   fw,
		dir:       dir,
		pattern:   pattern,
		recursive: strings.Contains(pattern, "**"),
		debounce:  DefaultDebounce,
		run:       run,
		logger:    slog.Default().With("component", "watch"),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// add watches dir and, for recursive patterns, every directory beneath it.
func (w *Watcher) add(dir string) error {
	if !w.recursive {
		return w.watcher.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Run performs an initial run, then runs again each time the directory
// settles after a relevant change. Run errors are logged and watching
// continues. Returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.runOnce(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching for changes", "dir", w.dir, "pattern", w.pattern)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

// relevant reports whether event should trigger a run. New directories
// under a recursive pattern are added to the watch list.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}

	if w.recursive && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.add(event.Name); err != nil {
				w.logger.Warn("cannot watch directory", "path", event.Name, "err", err)
			}
			return false
		}
	}

	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil {
		return false
	}
	return loader.Matches(w.pattern, rel)
}

func (w *Watcher) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.run(ctx); err != nil {
		w.logger.Error("ingestion run failed", "err", err)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
