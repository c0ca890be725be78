package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/storage"
)

// SaveManifest persists the collection's embedding manifest.
func (c *Collection) SaveManifest(ctx context.Context, manifest *core.Manifest) error {
	return c.backend.Update(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		manifest.Collection = c.name
		if manifest.CreatedAt.IsZero() {
			manifest.CreatedAt = now
		}
		manifest.UpdatedAt = now
		return tx.Set(makeManifestKey(c.name), storage.MarshalManifest(manifest))
	})
}

// Manifest retrieves the collection's embedding manifest.
// Returns nil, nil if no manifest exists.
func (c *Collection) Manifest(ctx context.Context) (*core.Manifest, error) {
	var manifest *core.Manifest
	err := c.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeManifestKey(c.name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			manifest, unmarshalErr = storage.UnmarshalManifest(val)
			return unmarshalErr
		})
	})

	return manifest, err
}
