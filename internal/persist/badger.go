package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage keeps records in an embedded Badger database. The schema
// version travels in the entry's user meta byte so the value stays plain JSON.
type BadgerStorage struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerStorage opens (or creates) a Badger database at path.
func NewBadgerStorage(path string, logger *slog.Logger) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // A snapshot write must survive a crash
	opts.CompactL0OnClose = true // Faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return &BadgerStorage{db: db, logger: logger}, nil
}

// Load implements Storage.
func (s *BadgerStorage) Load(_ context.Context, key string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		rec.Version = item.UserMeta()
		rec.Data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("badger load %s: %w", key, err)
	}
	return rec, nil
}

// Save implements Storage.
func (s *BadgerStorage) Save(_ context.Context, key string, rec Record) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), rec.Data).WithMeta(rec.Version))
	})
	if err != nil {
		return fmt.Errorf("badger save %s: %w", key, err)
	}
	return nil
}

// Close implements Storage.
func (s *BadgerStorage) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing badger database")
	}
	return s.db.Close()
}
