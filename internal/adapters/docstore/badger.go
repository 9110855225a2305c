// Package docstore contains the BadgerDB implementation of the
// document half of the hybrid store: key to JSON blob, no queries,
// whole-blob reads and writes only.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/ports/secondary"
)

// BadgerStore implements secondary.DocumentStore over an embedded
// BadgerDB. Safe for concurrent use.
type BadgerStore struct {
	db *badger.DB
}

// Open opens a persistent document store at path, creating the
// directory when absent. Badger's internal logging is routed through
// logger; pass nil to silence it.
func Open(path string, logger *slog.Logger) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("document store path must not be empty")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create document store directory %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path).WithSyncWrites(true).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens an ephemeral document store for tests.
func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory document store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Put writes a blob. Overwrites are idempotent.
func (s *BadgerStore) Put(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return fault.Storage(fault.StoreDocument, "put", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), blob)
	})
	if err != nil {
		return fault.Storage(fault.StoreDocument, "put", err)
	}

	return nil
}

// Get reads a blob, or fault.ErrNotFound when the key is absent.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fault.Storage(fault.StoreDocument, "get", err)
	}

	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fault.NotFoundf("document %s", key)
	}
	if err != nil {
		return nil, fault.Storage(fault.StoreDocument, "get", err)
	}

	return blob, nil
}

// Delete removes a blob. Deleting an absent key is not an error.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fault.Storage(fault.StoreDocument, "delete", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fault.Storage(fault.StoreDocument, "delete", err)
	}

	return nil
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

var _ secondary.DocumentStore = (*BadgerStore)(nil)
