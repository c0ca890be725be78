package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docrag/storage"
)

// Store implements storage.Store on a single BadgerDB database.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// OpenStore opens (or creates) a persistent store in the directory at path.
// With WithReadOnly the store must already exist and any number of
// read-only processes may open it at once.
//
// Returns storage.Store interface to enforce abstraction.
func OpenStore(path string, opts ...Option) (storage.Store, error) {
	backend, err := OpenBackend(path, false, opts...)
	if err != nil {
		return nil, err
	}
	return newStore(backend), nil
}

func newStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-store"),
	}
}

// ValidateCollectionName rejects names that cannot form an unambiguous key prefix.
func ValidateCollectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", storage.ErrInvalidCollectionName)
	}
	if strings.Contains(name, ":") {
		return fmt.Errorf("%w: %q contains ':'", storage.ErrInvalidCollectionName, name)
	}
	return nil
}

// OpenCollection opens an existing collection.
func (s *Store) OpenCollection(ctx context.Context, name string) (storage.Collection, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	err := s.backend.View(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionIndexKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", storage.ErrCollectionNotFound, name)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return newCollection(name, s.backend), nil
}

// CreateCollection opens the named collection, creating it if needed.
func (s *Store) CreateCollection(ctx context.Context, name string) (storage.Collection, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	created := false
	err := s.backend.Update(func(tx *badger.Txn) error {
		key := makeCollectionIndexKey(name)
		_, err := tx.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		created = true
		return tx.Set(key, nil)
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("created collection", "collection", name)
	}
	return newCollection(name, s.backend), nil
}

// Collections lists every collection name in key order.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(collectionIndexPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			names = append(names, collectionNameFromIndexKey(iter.Item().Key()))
		}
		return nil
	})
	return names, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.logger.Debug("closing store")
	return s.backend.Close()
}
