package storage

import (
	"context"

	"github.com/poiesic/docrag/core"
)

// Store owns the persistent state shared by ingestion and query runs.
type Store interface {
	// OpenCollection opens an existing collection.
	// Returns ErrCollectionNotFound if no collection with that name exists.
	OpenCollection(ctx context.Context, name string) (Collection, error)

	// CreateCollection opens the named collection, creating it if needed.
	CreateCollection(ctx context.Context, name string) (Collection, error)

	// Collections lists the names of every collection in the store, sorted.
	Collections(ctx context.Context) ([]string, error)

	// Close closes the store and releases resources.
	Close() error
}

// Collection is a named set of records searchable by vector distance.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Upsert writes every record of the batch, replacing records that share
	// an id. Either every record becomes visible or none does.
	// Returns core.ErrMisalignedBatch if the batch sequences differ in length
	// and ErrBatchTooLarge if the batch does not fit in one transaction.
	Upsert(ctx context.Context, batch core.UpsertBatch) error

	// Query returns up to topK records closest to embedding, ordered by
	// ascending squared Euclidean distance with ties broken by ascending id.
	// Returns ErrInvalidQuery if topK <= 0 and core.ErrDimensionMismatch if
	// stored vectors have a different length than embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]*core.SearchResult, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// Manifest returns the embedding manifest, or nil if none has been saved.
	Manifest(ctx context.Context) (*core.Manifest, error)

	// SaveManifest persists the manifest, stamping UpdatedAt and, on first
	// save, CreatedAt.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// ForEach calls fn with consecutive batches of at most batchSize records,
	// ordered by id. Each batch is read in its own transaction, so fn may
	// write to the collection.
	// Iteration stops at the first error from fn or when ctx is done.
	ForEach(ctx context.Context, batchSize int, fn func(ctx context.Context, records []*core.Record) error) error

	// Close releases the collection. The owning Store stays open.
	Close() error
}
