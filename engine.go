// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package docrag answers questions about a directory of documents.
//
// An Engine owns the vector store and AI provider built from one validated
// config.Config and hands out the pipelines that use them: ingestion,
// question answering, re-embedding and watch mode.
package docrag

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/ai/anthropic"
	"github.com/poiesic/docrag/ai/openai"
	"github.com/poiesic/docrag/chunker"
	"github.com/poiesic/docrag/config"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/ingestion"
	"github.com/poiesic/docrag/reembed"
	"github.com/poiesic/docrag/search"
	"github.com/poiesic/docrag/storage"
	"github.com/poiesic/docrag/storage/badger"
	"github.com/poiesic/docrag/watch"
)

type Engine struct {
	config   *config.Config
	store    storage.Store
	provider ai.AIProvider
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	store    storage.Store
	provider ai.AIProvider
	logger   *slog.Logger
	readOnly bool
}

// WithStore uses store instead of opening config.VectorStorePath.
// The engine takes ownership and closes it.
func WithStore(store storage.Store) EngineOption {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithProvider uses provider instead of building one from the config.
// The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithReadOnlyStore opens config.VectorStorePath read-only, so several
// query processes can share one store. Ingestion and re-embedding then fail
// with storage.ErrReadOnly.
func WithReadOnlyStore() EngineOption {
	return func(o *engineOptions) {
		o.readOnly = true
	}
}

// WithLogger sets the logger handed to every pipeline.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewProvider builds the AI provider named by config.CompletionProvider.
// Embeddings always come from an OpenAI-compatible API.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.CompletionProvider {
	case ai.ProviderAnthropic:
		completer, err := anthropic.NewCompleter(config)
		if err != nil {
			return nil, err
		}
		return openai.NewProviderWithCompleter(config, completer)
	default:
		return openai.NewProvider(config)
	}
}

func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	store := options.store
	if store == nil {
		var err error
		storeOpts := []badger.Option{badger.WithMemTableSize(int64(cfg.StoreMemTableMB) << 20)}
		if options.readOnly {
			storeOpts = append(storeOpts, badger.WithReadOnly())
		}
		store, err = badger.OpenStore(cfg.VectorStorePath, storeOpts...)
		if err != nil {
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(cfg.AI())
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Engine{
		config:   cfg,
		store:    store,
		provider: provider,
		logger:   logger,
	}, nil
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Config() *config.Config {
	return e.config
}

func (e *Engine) Store() storage.Store {
	return e.store
}

func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

// NewIngestionPipeline creates the configured collection if needed and
// returns a pipeline writing to it. The caller must Release the pipeline.
func (e *Engine) NewIngestionPipeline(ctx context.Context, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	col, err := e.store.CreateCollection(ctx, e.config.CollectionName)
	if err != nil {
		return nil, err
	}
	c, err := chunker.New(e.config.ChunkSize, e.config.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	base := []ingestion.Option{
		ingestion.WithPoolSize(e.config.ExtractWorkers),
		ingestion.WithBatchSize(e.config.EmbeddingBatchSize),
		ingestion.WithLogger(e.logger),
	}
	return ingestion.NewPipeline(col, e.provider.Embedder(), c, append(base, opts...)...)
}

// Ingest runs one full ingestion of the configured documents directory.
// Embedding progress is rendered to bar when it is not nil.
func (e *Engine) Ingest(ctx context.Context, bar io.Writer) (*ingestion.Report, error) {
	pipeline, err := e.NewIngestionPipeline(ctx, ingestion.WithProgress(bar))
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	return pipeline.Ingest(ctx, e.config.DocumentsDir, e.config.DocumentPattern)
}

// NewSearcher returns a searcher over the configured collection, which
// must already exist.
func (e *Engine) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	col, err := e.store.OpenCollection(ctx, e.config.CollectionName)
	if err != nil {
		return nil, err
	}

	base := []search.Option{
		search.WithTopK(e.config.TopK),
		search.WithMaxContextChars(e.config.MaxContextChars),
		search.WithLogger(e.logger),
	}
	return search.NewSearcher(col, e.provider, append(base, opts...)...)
}

// NewReembedder returns a reembedder for the configured collection, which
// must already exist.
func (e *Engine) NewReembedder(ctx context.Context, output, bar io.Writer) (*reembed.Reembedder, error) {
	col, err := e.store.OpenCollection(ctx, e.config.CollectionName)
	if err != nil {
		return nil, err
	}

	cfg := reembed.DefaultConfig()
	cfg.BatchSize = e.config.EmbeddingBatchSize
	cfg.MaxRetries = e.config.MaxRetries
	return reembed.NewReembedder(col, e.provider.Embedder(), cfg, output, bar), nil
}

// NewWatcher returns a watcher that re-runs Ingest whenever documents
// matching the configured pattern change. report receives each successful
// run's report and may be nil.
func (e *Engine) NewWatcher(bar io.Writer, report func(*ingestion.Report), opts ...watch.Option) (*watch.Watcher, error) {
	run := func(ctx context.Context) error {
		r, err := e.Ingest(ctx, bar)
		if err != nil {
			return err
		}
		if report != nil {
			report(r)
		}
		return nil
	}

	base := []watch.Option{watch.WithLogger(e.logger)}
	return watch.New(e.config.DocumentsDir, e.config.DocumentPattern, run, append(base, opts...)...)
}

// Stats describes the configured collection.
type Stats struct {
	Collection  string
	Count       int
	Manifest    *core.Manifest // nil before the first ingestion
	Collections []string       // Every collection in the store, sorted
}

// Stats reports the record count and manifest of the configured collection
// along with the names of every collection in the store.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	col, err := e.store.OpenCollection(ctx, e.config.CollectionName)
	if err != nil {
		return nil, err
	}

	count, err := col.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	manifest, err := col.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	names, err := e.store.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	return &Stats{
		Collection:  col.Name(),
		Count:       count,
		Manifest:    manifest,
		Collections: names,
	}, nil
}
