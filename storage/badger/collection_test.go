package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T) (storage.Store, storage.Collection) {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	col, err := store.CreateCollection(context.Background(), "docs")
	require.NoError(t, err)
	return store, col
}

func batchOf(entries ...struct {
	id  string
	vec []float32
}) core.UpsertBatch {
	var b core.UpsertBatch
	for i, e := range entries {
		b.Add(e.id, "text of "+e.id, core.Metadata{Source: "doc.pdf", Chunk: i}, e.vec)
	}
	return b
}

type entry = struct {
	id  string
	vec []float32
}

func TestStore_OpenCollectionNotFound(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.OpenCollection(context.Background(), "docs")
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
}

func TestStore_CreateThenOpen(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestCollection(t)

	again, err := store.CreateCollection(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", again.Name())

	opened, err := store.OpenCollection(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", opened.Name())

	_, err = store.CreateCollection(ctx, "archive")
	require.NoError(t, err)

	names, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive", "docs"}, names)
}

func TestStore_InvalidCollectionName(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	for _, name := range []string{"", "  ", "a:b"} {
		_, err := store.CreateCollection(context.Background(), name)
		assert.ErrorIs(t, err, storage.ErrInvalidCollectionName, "name %q", name)
	}
}

func TestUpsert_AndCount(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	err := col.Upsert(ctx, batchOf(
		entry{"report-0", []float32{1, 0}},
		entry{"report-1", []float32{0, 1}},
		entry{"report-2", []float32{0.6, 0.8}},
	))
	require.NoError(t, err)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUpsert_Idempotent(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)
	batch := batchOf(
		entry{"report-0", []float32{1, 0}},
		entry{"report-1", []float32{0, 1}},
	)

	require.NoError(t, col.Upsert(ctx, batch))
	first, err := col.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)

	require.NoError(t, col.Upsert(ctx, batch))
	second, err := col.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, first, second)
}

func TestUpsert_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	require.NoError(t, col.Upsert(ctx, batchOf(entry{"a-0", []float32{1, 0}})))

	var replacement core.UpsertBatch
	replacement.Add("a-0", "rewritten", core.Metadata{Source: "a.pdf", Chunk: 0}, []float32{0, 1})
	require.NoError(t, col.Upsert(ctx, replacement))

	hits, err := col.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "rewritten", hits[0].Text)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
}

func TestUpsert_RejectsMisalignedBatch(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	batch := batchOf(entry{"a-0", []float32{1, 0}}, entry{"a-1", []float32{0, 1}})
	batch.Embeddings = batch.Embeddings[:1]

	err := col.Upsert(ctx, batch)
	assert.ErrorIs(t, err, core.ErrMisalignedBatch)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpsert_EmptyBatch(t *testing.T) {
	_, col := newTestCollection(t)
	assert.NoError(t, col.Upsert(context.Background(), core.UpsertBatch{}))
}

func TestQuery_OrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	require.NoError(t, col.Upsert(ctx, batchOf(
		entry{"far", []float32{-1, 0}},
		entry{"near", []float32{0.8, 0.6}},
		entry{"exact", []float32{1, 0}},
		entry{"side", []float32{0, 1}},
	)))

	hits, err := col.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "exact", hits[0].ID)
	assert.Equal(t, "near", hits[1].ID)
	assert.Equal(t, "side", hits[2].ID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
	assert.InDelta(t, 0.4, hits[1].Distance, 1e-6)
	assert.InDelta(t, 2, hits[2].Distance, 1e-6)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
	assert.Equal(t, "doc.pdf", hits[0].Metadata.Source)
	assert.Equal(t, "text of exact", hits[0].Text)
}

func TestQuery_TiesBreakByID(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	require.NoError(t, col.Upsert(ctx, batchOf(
		entry{"c", []float32{0, 1}},
		entry{"a", []float32{0, -1}},
		entry{"b", []float32{0, 1}},
	)))

	hits, err := col.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
}

func TestQuery_FewerThanTopK(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	hits, err := col.Query(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, col.Upsert(ctx, batchOf(entry{"only", []float32{1, 0}})))
	hits, err = col.Query(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestQuery_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	_, err := col.Query(ctx, []float32{1, 0}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = col.Query(ctx, nil, 4)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)
	require.NoError(t, col.Upsert(ctx, batchOf(entry{"a-0", []float32{1, 0, 0}})))

	_, err := col.Query(ctx, []float32{1, 0}, 4)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestCollections_AreIsolated(t *testing.T) {
	ctx := context.Background()
	store, docs := newTestCollection(t)
	archive, err := store.CreateCollection(ctx, "doc")
	require.NoError(t, err)

	require.NoError(t, docs.Upsert(ctx, batchOf(entry{"a-0", []float32{1, 0}}, entry{"a-1", []float32{0, 1}})))
	require.NoError(t, archive.Upsert(ctx, batchOf(entry{"b-0", []float32{1, 0}})))

	n, err := docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = archive.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestForEach(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	var batch core.UpsertBatch
	for i := range 7 {
		batch.Add(fmt.Sprintf("doc-%02d", i), "t", core.Metadata{Source: "doc.pdf", Chunk: i}, []float32{1, 0})
	}
	require.NoError(t, col.Upsert(ctx, batch))

	var sizes []int
	var ids []string
	err := col.ForEach(ctx, 3, func(ctx context.Context, records []*core.Record) error {
		sizes = append(sizes, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, batch.IDs, ids)
}

func TestForEach_WritesDuringIteration(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	require.NoError(t, col.Upsert(ctx, batchOf(
		entry{"a", []float32{1, 0}},
		entry{"b", []float32{1, 0}},
		entry{"c", []float32{1, 0}},
	)))

	visited := 0
	err := col.ForEach(ctx, 2, func(ctx context.Context, records []*core.Record) error {
		var rewrite core.UpsertBatch
		for _, r := range records {
			visited++
			rewrite.Add(r.ID, r.Text, r.Metadata, []float32{0, 1, 0})
		}
		return col.Upsert(ctx, rewrite)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, visited)

	hits, err := col.Query(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestForEach_StopsOnError(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)
	require.NoError(t, col.Upsert(ctx, batchOf(entry{"a", []float32{1}}, entry{"b", []float32{1}})))

	errStop := fmt.Errorf("stop")
	calls := 0
	err := col.ForEach(ctx, 1, func(ctx context.Context, records []*core.Record) error {
		calls++
		return errStop
	})
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, calls)

	err = col.ForEach(ctx, 0, func(context.Context, []*core.Record) error { return nil })
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestManifest(t *testing.T) {
	ctx := context.Background()
	_, col := newTestCollection(t)

	m, err := col.Manifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, col.SaveManifest(ctx, &core.Manifest{EmbeddingModel: "all-minilm", Dimensions: 384}))

	m, err = col.Manifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "docs", m.Collection)
	assert.Equal(t, "all-minilm", m.EmbeddingModel)
	assert.Equal(t, 384, m.Dimensions)
	assert.False(t, m.CreatedAt.IsZero())

	created := m.CreatedAt
	m.EmbeddingModel = "nomic-embed-text"
	require.NoError(t, col.SaveManifest(ctx, m))

	m, err = col.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", m.EmbeddingModel)
	assert.True(t, m.CreatedAt.Equal(created))
	assert.False(t, m.UpdatedAt.Before(created))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenStore(dir)
	require.NoError(t, err)
	col, err := store.CreateCollection(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, col.Upsert(ctx, batchOf(entry{"report-0", []float32{1, 0}})))
	require.NoError(t, col.SaveManifest(ctx, &core.Manifest{EmbeddingModel: "all-minilm", Dimensions: 2}))
	require.NoError(t, store.Close())

	store, err = OpenStore(dir)
	require.NoError(t, err)
	defer store.Close()

	col, err = store.OpenCollection(ctx, "docs")
	require.NoError(t, err)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	m, err := col.Manifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Dimensions)
}

func largeBatch(n, dims int) core.UpsertBatch {
	var b core.UpsertBatch
	text := strings.Repeat("lorem ipsum ", 84)[:1000]
	for i := range n {
		vec := make([]float32, dims)
		vec[i%dims] = 1 + float32(i/dims)
		b.Add(core.ChunkID("corpus", i), text, core.Metadata{Source: "corpus.pdf", Chunk: i}, vec)
	}
	return b
}

func TestUpsert_LargeRunFitsOneTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("writes tens of megabytes")
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		chunks int
		dims   int
	}{
		{"small model", 5000, 384},
		{"large model", 4000, 1536},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenStore(t.TempDir())
			require.NoError(t, err)
			defer store.Close()

			col, err := store.CreateCollection(ctx, "docs")
			require.NoError(t, err)
			require.NoError(t, col.Upsert(ctx, largeBatch(tt.chunks, tt.dims)))

			count, err := col.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.chunks, count)

			query := make([]float32, tt.dims)
			query[7] = 1
			hits, err := col.Query(ctx, query, 1)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "corpus-7", hits[0].ID)
		})
	}
}

func TestUpsert_MemTableSizeBoundsTransaction(t *testing.T) {
	ctx := context.Background()

	store, err := NewMemoryStore(WithMemTableSize(8 << 20))
	require.NoError(t, err)
	defer store.Close()
	col, err := store.CreateCollection(ctx, "docs")
	require.NoError(t, err)

	err = col.Upsert(ctx, largeBatch(1000, 384))
	assert.ErrorIs(t, err, storage.ErrBatchTooLarge)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "a failed upsert writes nothing")
}

func TestStore_ReadOnlyOpensShareTheStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenStore(dir)
	require.NoError(t, err)
	col, err := store.CreateCollection(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, col.Upsert(ctx, batchOf(entry{"report-0", []float32{1, 0}}, entry{"report-1", []float32{0, 1}})))
	require.NoError(t, store.Close())

	first, err := OpenStore(dir, WithReadOnly())
	require.NoError(t, err)
	defer first.Close()
	second, err := OpenStore(dir, WithReadOnly())
	require.NoError(t, err)
	defer second.Close()

	for _, s := range []storage.Store{first, second} {
		col, err := s.OpenCollection(ctx, "docs")
		require.NoError(t, err)

		hits, err := col.Query(ctx, []float32{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "report-1", hits[0].ID)

		err = col.Upsert(ctx, batchOf(entry{"report-2", []float32{1, 1}}))
		assert.ErrorIs(t, err, storage.ErrReadOnly)
	}

	_, err = first.CreateCollection(ctx, "other")
	assert.ErrorIs(t, err, storage.ErrReadOnly)
}

func TestStore_ReadOnlyRequiresExistingStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := OpenStore(dir, WithReadOnly())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(dir)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "read-only open does not create the directory")
}
