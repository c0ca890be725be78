// Package loader discovers source documents on disk and extracts their text.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/docrag/core"
)

var (
	// ErrUnsupportedFormat is returned when no extractor handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInvalidPattern is returned when a discovery glob cannot be parsed.
	ErrInvalidPattern = errors.New("invalid document pattern")
)

// Extractor turns one file into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Loader dispatches extraction by file extension.
type Loader struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used by the loader.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger.With("component", "loader")
	}
}

// WithExtractor registers ext (including the dot, e.g. ".html") with an extractor,
// replacing any existing registration.
func WithExtractor(ext string, e Extractor) Option {
	return func(l *Loader) {
		l.extractors[strings.ToLower(ext)] = e
	}
}

// New creates a loader handling PDF, plain text and Markdown files.
func New(opts ...Option) *Loader {
	text := NewTextExtractor()
	l := &Loader{
		extractors: map[string]Extractor{
			".pdf":      NewPDFExtractor(),
			".txt":      text,
			".md":       text,
			".markdown": text,
		},
		logger: slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SupportedExtensions returns the registered extensions in sorted order.
func (l *Loader) SupportedExtensions() []string {
	exts := make([]string, 0, len(l.extractors))
	for ext := range l.extractors {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Discover returns the regular files under dir matching the doublestar
// pattern, sorted by path. Patterns are relative to dir; "*.pdf" matches the
// top level only and "**/*.pdf" descends into subdirectories.
func (l *Loader) Discover(dir, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("documents directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("documents directory %s: %w", dir, fs.ErrInvalid)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	slices.Sort(paths)

	l.logger.Debug("discovered documents", "dir", dir, "pattern", pattern, "count", len(paths))
	return paths, nil
}

// Matches reports whether name, relative to the documents directory, matches pattern.
func Matches(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, filepath.ToSlash(name))
	return err == nil && ok
}

// Load extracts the text of the file at path into a Document.
func (l *Loader) Load(ctx context.Context, path string) (*core.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	extractor, ok := l.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}

	l.logger.Debug("extracted document", "path", path, "chars", len(text))
	return &core.Document{
		Name: filepath.Base(path),
		Path: path,
		Text: text,
	}, nil
}
