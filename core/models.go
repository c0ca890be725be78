package core

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Document is a source file read during one ingestion run.
// It is never persisted; only the chunks derived from it are.
type Document struct {
	Name string // Base file name, e.g. "report.pdf"
	Path string // Full path on disk
	Text string // Extracted text, before normalization
}

// Stem returns the document name without its extension.
// "report.pdf" becomes "report".
func (d *Document) Stem() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// Chunk is a contiguous slice of a document's normalized text.
type Chunk struct {
	ID     string
	Text   string
	Source string // Name of the document the chunk came from
	Index  int    // 0-based position within the source document
}

// ChunkID derives the record ID for the chunk at index within a document stem.
func ChunkID(stem string, index int) string {
	return stem + "-" + strconv.Itoa(index)
}

// Metadata is stored alongside every record and reported with search results.
type Metadata struct {
	Source string
	Chunk  int
}

// MetadataFor returns the metadata describing a chunk.
func MetadataFor(c Chunk) Metadata {
	return Metadata{Source: c.Source, Chunk: c.Index}
}

// Record is the persisted unit of a collection.
type Record struct {
	ID        string
	Text      string
	Metadata  Metadata
	Vector    []float32 // Unit-length embedding of Text
	UpdatedAt time.Time // When the record was last written
}

// UpsertBatch holds the index-aligned sequences handed to a collection upsert.
// IDs[i], Texts[i], Metadatas[i] and Embeddings[i] describe one record.
type UpsertBatch struct {
	IDs        []string
	Texts      []string
	Metadatas  []Metadata
	Embeddings [][]float32
}

// Len returns the number of records in the batch.
func (b *UpsertBatch) Len() int {
	return len(b.IDs)
}

// Add appends a single record to the batch.
func (b *UpsertBatch) Add(id, text string, metadata Metadata, embedding []float32) {
	b.IDs = append(b.IDs, id)
	b.Texts = append(b.Texts, text)
	b.Metadatas = append(b.Metadatas, metadata)
	b.Embeddings = append(b.Embeddings, embedding)
}

// Records converts the batch into records stamped with the given time.
// The batch must be valid.
func (b *UpsertBatch) Records(now time.Time) []*Record {
	records := make([]*Record, b.Len())
	for i := range b.IDs {
		records[i] = &Record{
			ID:        b.IDs[i],
			Text:      b.Texts[i],
			Metadata:  b.Metadatas[i],
			Vector:    b.Embeddings[i],
			UpdatedAt: now,
		}
	}
	return records
}

// Manifest records which embedding model populated a collection.
// Vectors from different models are not comparable, so every writer and
// reader checks the manifest before touching vectors.
type Manifest struct {
	Collection     string
	EmbeddingModel string
	Dimensions     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SearchResult is one hit returned by a collection query.
// Lower distance means a closer match.
type SearchResult struct {
	ID       string
	Text     string
	Metadata Metadata
	Distance float32
}
