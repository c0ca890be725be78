package ingestion

import "errors"

var (
	// ErrCollectionRequired is returned when a collection is not provided.
	ErrCollectionRequired = errors.New("collection required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrNoDocuments is returned when discovery finds no matching documents.
	ErrNoDocuments = errors.New("no documents found")

	// ErrNoChunks is returned when no document produced any text.
	ErrNoChunks = errors.New("no chunks produced")
)
