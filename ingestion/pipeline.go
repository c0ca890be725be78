package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/chunker"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/loader"
	"github.com/poiesic/docrag/progress"
	"github.com/poiesic/docrag/storage"
)

// DefaultBatchSize is the number of chunks sent per embedding request.
const DefaultBatchSize = 64

// Pipeline orchestrates document ingestion into a single collection.
type Pipeline struct {
	collection storage.Collection
	embedder   ai.Embedder
	chunker    *chunker.Chunker
	loader     *loader.Loader
	pool       *ants.Pool
	batchSize  int
	progress   io.Writer
	logger     *slog.Logger
	baseLogger *slog.Logger // as passed to WithLogger, handed to the default loader
}

// Report summarizes one ingestion run.
type Report struct {
	Documents    int // Documents that contributed chunks
	Skipped      int // Documents that failed extraction, were empty or duplicated an ID stem
	Chunks       int // Records written
	Collection   string
	Model        string
	ChunkSize    int
	ChunkOverlap int
	Elapsed      time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size used for text extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("embedding batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithLoader sets the document loader.
// Default is loader.New() using the pipeline's logger.
func WithLoader(l *loader.Loader) Option {
	return func(p *Pipeline) error {
		if l != nil {
			p.loader = l
		}
		return nil
	}
}

// WithProgress renders embedding progress to w. A nil writer disables it.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.baseLogger = logger
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline writing to collection.
func NewPipeline(
	collection storage.Collection,
	embedder ai.Embedder,
	chunker *chunker.Chunker,
	opts ...Option,
) (*Pipeline, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		collection: collection,
		embedder:   embedder,
		chunker:    chunker,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default().With("component", "ingestion"),
		baseLogger: slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.loader == nil {
		p.loader = loader.New(loader.WithLogger(p.baseLogger))
	}
	return p, nil
}

// Ingest loads every document under dir matching pattern, chunks and embeds
// the text, and upserts the chunks into the collection.
//
// ErrNoDocuments and ErrNoChunks are returned when there is nothing to
// write. core.ErrModelMismatch is returned before any embedding request when
// the collection was populated by a different embedding model.
func (p *Pipeline) Ingest(ctx context.Context, dir, pattern string) (*Report, error) {
	started := time.Now()

	paths, err := p.loader.Discover(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoDocuments, pattern, dir)
	}
	p.logger.Info("ingesting documents", "dir", dir, "pattern", pattern, "documents", len(paths))

	manifest, err := p.collection.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	model := p.embedder.Model()
	if err := core.CheckManifest(manifest, model, 0); err != nil {
		return nil, err
	}

	report := &Report{
		Collection:   p.collection.Name(),
		Model:        model,
		ChunkSize:    p.chunker.Size(),
		ChunkOverlap: p.chunker.Overlap(),
	}

	chunks := p.chunkAll(p.extract(ctx, paths), paths, report)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %d documents yielded no text", ErrNoChunks, len(paths))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	tracker := progress.NewTracker(p.progress, len(texts), "embedding")
	tracker.Start()
	embeddings, err := p.embed(ctx, texts, tracker)
	if err != nil {
		tracker.Abort()
		return nil, err
	}
	tracker.Finish()

	dims := len(embeddings[0])
	if err := core.CheckManifest(manifest, model, dims); err != nil {
		return nil, err
	}

	var batch core.UpsertBatch
	for i, c := range chunks {
		batch.Add(c.ID, c.Text, core.MetadataFor(c), embeddings[i])
	}
	if err := p.collection.Upsert(ctx, batch); err != nil {
		return nil, fmt.Errorf("upserting %d chunks: %w", batch.Len(), err)
	}

	if manifest == nil {
		manifest = &core.Manifest{EmbeddingModel: model}
	}
	manifest.Dimensions = dims
	if err := p.collection.SaveManifest(ctx, manifest); err != nil {
		return nil, err
	}

	report.Chunks = batch.Len()
	report.Elapsed = time.Since(started)
	p.logger.Info("ingestion complete",
		"collection", report.Collection,
		"documents", report.Documents,
		"skipped", report.Skipped,
		"chunks", report.Chunks,
		"elapsed", report.Elapsed)

	return report, nil
}

// chunkAll splits the extracted documents in discovery order. Failed and
// empty documents are skipped, as is any document whose stem was already
// used, since its chunk ids would overwrite the earlier document's.
func (p *Pipeline) chunkAll(results []extraction, paths []string, report *Report) []core.Chunk {
	var chunks []core.Chunk
	stems := make(map[string]string, len(results))

	for i, r := range results {
		switch {
		case r.err != nil:
			p.logger.Warn("skipping document", "path", paths[i], "err", r.err)
			report.Skipped++
			continue
		case !usable(r.doc):
			p.logger.Warn("skipping document with no text", "path", paths[i])
			report.Skipped++
			continue
		}

		stem := r.doc.Stem()
		if prev, ok := stems[stem]; ok {
			p.logger.Warn("skipping document with duplicate name stem",
				"path", paths[i], "conflicts_with", prev)
			report.Skipped++
			continue
		}
		stems[stem] = paths[i]

		docChunks := p.chunker.Chunks(r.doc)
		p.logger.Debug("chunked document", "name", r.doc.Name, "chunks", len(docChunks))
		chunks = append(chunks, docChunks...)
		report.Documents++
	}

	return chunks
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
