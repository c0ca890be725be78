package badger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/docrag/storage"
)

const (
	// DefaultMemTableSize bounds a single write transaction to about 15% of
	// its value. Badger's own default is 64 MiB.
	DefaultMemTableSize int64 = 128 << 20

	// DefaultValueThreshold sends record values at least this large to the
	// value log, so a transaction is charged only a pointer for them.
	DefaultValueThreshold int64 = 1 << 10
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db       *badger.DB
	readOnly bool
	logger   *slog.Logger
}

// Option configures how a Backend opens its database.
type Option func(*backendOptions)

type backendOptions struct {
	readOnly     bool
	memTableSize int64
}

// WithReadOnly opens the database read-only. Read-only opens share the
// directory lock with each other but not with a writer.
func WithReadOnly() Option {
	return func(o *backendOptions) {
		o.readOnly = true
	}
}

// WithMemTableSize sets the memtable size in bytes, which also caps the
// size of one transaction. Values <= 0 keep DefaultMemTableSize.
func WithMemTableSize(size int64) Option {
	return func(o *backendOptions) {
		if size > 0 {
			o.memTableSize = size
		}
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

// Infof is demoted to debug; badger reports routine compaction at info.
func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist, unless opening read-only.
func OpenBackend(filePath string, inMemory bool, opts ...Option) (*Backend, error) {
	settings := backendOptions{memTableSize: DefaultMemTableSize}
	for _, opt := range opts {
		opt(&settings)
	}

	var dbOpts badger.Options
	logger := slog.Default().With("component", "badger")

	switch {
	case inMemory:
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	case settings.readOnly:
		if err := checkDir(filePath); err != nil {
			return nil, err
		}
		dbOpts = badger.DefaultOptions(filePath).WithReadOnly(true)
	default:
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		dbOpts = badger.DefaultOptions(filePath)
	}

	dbOpts.Logger = &badgerLoggerAdapter{logger: logger}
	dbOpts.Compression = options.None
	dbOpts.MemTableSize = settings.memTableSize
	if !inMemory {
		dbOpts.ValueThreshold = DefaultValueThreshold
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:       db,
		readOnly: settings.readOnly,
		logger:   logger,
	}, nil
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("opening store read-only: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// ReadOnly reports whether the database was opened read-only.
func (b *Backend) ReadOnly() bool {
	return b.readOnly
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction; fn must commit it.
// The transaction is automatically discarded when fn returns.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Update runs fn in a read-write transaction and commits it when fn succeeds.
// Badger's transaction size limit surfaces as storage.ErrBatchTooLarge.
func (b *Backend) Update(fn func(tx *badger.Txn) error) error {
	if b.readOnly {
		return storage.ErrReadOnly
	}
	err := b.WithTx(func(tx *badger.Txn) error {
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("%w: %w", storage.ErrBatchTooLarge, err)
	}
	return err
}

// View runs fn in a read-only transaction.
func (b *Backend) View(fn func(tx *badger.Txn) error) error {
	return b.WithTx(fn, false)
}
