package ingestion

import (
	"context"
	"fmt"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/progress"
)

// embed generates embeddings for texts in consecutive slices of batchSize,
// concatenating results in input order.
func (p *Pipeline) embed(ctx context.Context, texts []string, tracker *progress.Tracker) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		batch := texts[start:end]

		p.logger.Debug("embedding batch", "start", start, "size", len(batch))
		vectors, err := p.embedder.EmbedTexts(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d, received %d",
				core.ErrEmbeddingCountMismatch, len(batch), len(vectors))
		}

		embeddings = append(embeddings, vectors...)
		tracker.Add(len(batch))
	}

	return embeddings, nil
}
