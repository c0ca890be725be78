package badger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
)

// Collection implements storage.Collection as a key namespace in BadgerDB.
// Queries are exact: every stored vector is compared with the query.
type Collection struct {
	name    string
	backend *Backend
	logger  *slog.Logger
}

var _ storage.Collection = (*Collection)(nil)

func newCollection(name string, backend *Backend) *Collection {
	return &Collection{
		name:    name,
		backend: backend,
		logger:  slog.Default().With("component", "badger-collection", "collection", name),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Close is a no-op; the Store owns the database.
func (c *Collection) Close() error {
	return nil
}

// Upsert writes every record of the batch in one transaction.
func (c *Collection) Upsert(ctx context.Context, batch core.UpsertBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	records := batch.Records(time.Now().UTC())
	err := c.backend.Update(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := tx.Set(makeRecordKey(c.name, record.ID), storage.MarshalRecord(record)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Error("upsert failed", "records", len(records), "err", err)
		return err
	}

	c.logger.Debug("upserted records", "records", len(records))
	return nil
}

// Query returns the topK records closest to embedding.
func (c *Collection) Query(ctx context.Context, embedding []float32, topK int) ([]*core.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", storage.ErrInvalidQuery)
	}

	// results stays sorted best-first and never exceeds topK entries.
	results := make([]*core.SearchResult, 0, topK)
	err := c.scan(ctx, nil, func(record *core.Record) (bool, error) {
		if len(record.Vector) != len(embedding) {
			return false, fmt.Errorf("%w: record %q has %d dimensions, query has %d",
				core.ErrDimensionMismatch, record.ID, len(record.Vector), len(embedding))
		}

		hit := &core.SearchResult{
			ID:       record.ID,
			Text:     record.Text,
			Metadata: record.Metadata,
			Distance: core.SquaredL2(embedding, record.Vector),
		}
		pos, _ := slices.BinarySearchFunc(results, hit, compareResults)
		if pos >= topK {
			return true, nil
		}
		if len(results) == topK {
			results = results[:topK-1]
		}
		results = slices.Insert(results, pos, hit)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// compareResults orders by ascending distance, then ascending id.
func compareResults(a, b *core.SearchResult) int {
	switch {
	case a.Distance < b.Distance:
		return -1
	case a.Distance > b.Distance:
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// Count returns the number of records in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	count := 0
	err := c.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeRecordPrefix(c.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ForEach calls fn with consecutive batches of records in id order.
// Each batch is read in its own transaction, so fn may write to the collection.
func (c *Collection) ForEach(ctx context.Context, batchSize int, fn func(ctx context.Context, records []*core.Record) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batchSize must be positive, got %d", storage.ErrInvalidQuery, batchSize)
	}

	var after []byte
	for {
		batch := make([]*core.Record, 0, batchSize)
		var last []byte
		err := c.scan(ctx, after, func(record *core.Record) (bool, error) {
			batch = append(batch, record)
			last = makeRecordKey(c.name, record.ID)
			return len(batch) < batchSize, nil
		})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(ctx, batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		after = last
	}
}

// scan visits records in key order, starting after the key after when set.
// visit returns false to stop early.
func (c *Collection) scan(ctx context.Context, after []byte, visit func(*core.Record) (bool, error)) error {
	return c.backend.View(func(tx *badger.Txn) error {
		prefix := makeRecordPrefix(c.name)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := prefix
		if after != nil {
			start = after
		}

		for iter.Seek(start); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if after != nil && bytes.Equal(item.Key(), after) {
				continue
			}

			var record *core.Record
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			more, err := visit(record)
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		return nil
	})
}
