package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
)

const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 4

	// DefaultMaxContextChars is the context budget in characters.
	DefaultMaxContextChars = 12000
)

// Answer is the outcome of one question.
type Answer struct {
	Text    string               // Completion text
	Results []*core.SearchResult // Retrieved chunks, best first
	Context string               // Context block sent to the completion model
}

// Searcher answers questions from the chunks in one collection.
type Searcher struct {
	collection      storage.Collection
	embedder        ai.Embedder
	completer       ai.Completer
	topK            int
	maxContextChars int
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithTopK sets how many chunks are retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k < 1 {
			return fmt.Errorf("top-k must be positive, got %d", k)
		}
		s.topK = k
		return nil
	}
}

// WithMaxContextChars sets the context budget in characters.
// Default is DefaultMaxContextChars.
func WithMaxContextChars(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("max context chars must be positive, got %d", n)
		}
		s.maxContextChars = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	collection storage.Collection,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		collection:      collection,
		embedder:        provider.Embedder(),
		completer:       provider.Completer(),
		topK:            DefaultTopK,
		maxContextChars: DefaultMaxContextChars,
		logger:          slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// CheckModel reports whether the collection can be queried with the
// configured embedder. It returns core.ErrModelMismatch when the collection
// was embedded with a different model and nil for an empty collection.
func (s *Searcher) CheckModel(ctx context.Context) error {
	manifest, err := s.collection.Manifest(ctx)
	if err != nil {
		return err
	}
	return core.CheckManifest(manifest, s.embedder.Model(), 0)
}

// Retrieve returns up to top-K chunks nearest to the question, best first.
// Returns ErrEmptyQuestion for a blank question, core.ErrModelMismatch if the
// collection was embedded with a different model and core.ErrDimensionMismatch
// if the question vector does not match the stored vectors.
func (s *Searcher) Retrieve(ctx context.Context, question string) ([]*core.SearchResult, error) {
	return s.retrieve(ctx, question, &noopMonitor{})
}

func (s *Searcher) retrieve(ctx context.Context, question string, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	manifest, err := s.collection.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	model := s.embedder.Model()
	if err := core.CheckManifest(manifest, model, 0); err != nil {
		return nil, err
	}

	embedding, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		s.logger.Error("error generating embedding for question", "err", err)
		return nil, err
	}
	if err := core.CheckManifest(manifest, model, len(embedding)); err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	results, err := s.collection.Query(ctx, embedding, s.topK)
	if err != nil {
		s.logger.Error("error querying collection", "err", err)
		return nil, err
	}
	monitor.AfterRetrieval(results)

	s.logger.Debug("retrieved chunks", "requested", s.topK, "found", len(results))
	return results, nil
}

// Ask answers a question from the collection.
func (s *Searcher) Ask(ctx context.Context, question string) (*Answer, error) {
	return s.AskWithMonitor(ctx, question, nil)
}

// AskWithMonitor answers a question from the collection with monitoring.
// The monitor receives callbacks at each stage of the process.
// A failed completion is returned wrapped in ErrCompletionFailed.
func (s *Searcher) AskWithMonitor(ctx context.Context, question string, monitor SearchMonitor) (*Answer, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(question)

	results, err := s.retrieve(ctx, question, monitor)
	if err != nil {
		return nil, err
	}

	contextBlock, included := assemble(results, s.maxContextChars)
	monitor.AfterContextAssembly(contextBlock, included)
	if included < len(results) {
		s.logger.Debug("context budget reached", "included", included, "retrieved", len(results))
	}

	system, user := BuildPrompt(contextBlock, question)
	text, err := s.completer.Complete(ctx, system, user)
	if err != nil {
		s.logger.Error("error completing answer", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	answer := &Answer{
		Text:    strings.TrimSpace(text),
		Results: results,
		Context: contextBlock,
	}
	monitor.Finish(answer)
	return answer, nil
}
