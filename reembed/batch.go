package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
)

// BatchProcessor handles embedding generation for batches of records.
type BatchProcessor struct {
	collection     storage.Collection
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(collection storage.Collection, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		collection:     collection,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of records and writes them back
// to the collection. Text and metadata are preserved.
// Returns the dimensionality of the new vectors.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	// Extract text content
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return 0, fmt.Errorf("%w: expected %d, got %d", core.ErrEmbeddingCountMismatch, len(records), len(embeddings))
	}

	var batch core.UpsertBatch
	for i, record := range records {
		batch.Add(record.ID, record.Text, record.Metadata, core.NormalizeVector(embeddings[i]))
	}

	if err := bp.collection.Upsert(ctx, batch); err != nil {
		return 0, fmt.Errorf("failed to update records: %w", err)
	}

	return len(batch.Embeddings[0]), nil
}
