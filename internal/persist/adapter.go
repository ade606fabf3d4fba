// Package persist serializes the durable subset of store state under a
// single versioned key and restores it on start.
//
// Storage failures are never fatal: a missing, unreadable, corrupt or
// version-mismatched record hydrates as defaults, and failed writes are
// logged and dropped.
package persist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// Adapter reads and writes the snapshot record through a Storage.
type Adapter struct {
	storage Storage
	key     string
	logger  *slog.Logger

	mu   sync.Mutex
	last []byte // bytes of the last successful write or read
}

// NewAdapter creates an adapter writing under key (DefaultKey when empty).
func NewAdapter(storage Storage, key string, logger *slog.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{storage: storage, key: key, logger: logger}
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// Hydrate loads the stored snapshot. ok is false when defaults were used.
func (a *Adapter) Hydrate(ctx context.Context) (snap Snapshot, ok bool) {
	rec, err := a.storage.Load(ctx, a.key)
	switch {
	case errors.Is(err, ErrNotFound):
		a.logger.Debug("no stored snapshot, using defaults", "key", a.key)
		return DefaultSnapshot(), false
	case err != nil:
		a.logger.Warn("snapshot load failed, using defaults",
			"key", a.key,
			"code", domainerrors.CodeStorageUnavailable,
			"error", err)
		return DefaultSnapshot(), false
	}

	if rec.Version != SchemaVersion {
		a.logger.Warn("snapshot version mismatch, using defaults",
			"key", a.key,
			"stored_version", rec.Version,
			"want_version", SchemaVersion)
		return DefaultSnapshot(), false
	}

	snap, err = Decode(rec.Data)
	if err != nil {
		a.logger.Warn("snapshot corrupt, using defaults", "key", a.key, "error", err)
		return DefaultSnapshot(), false
	}

	a.mu.Lock()
	a.last = rec.Data
	a.mu.Unlock()

	a.logger.Info("snapshot hydrated",
		"key", a.key,
		"authenticated", snap.User != nil,
		"collections", len(snap.Collections),
		"cart_items", len(snap.CartItems))
	return snap, true
}

// Persist writes snap unless it serializes to the bytes already stored.
// Failures are logged and returned as STORAGE_UNAVAILABLE; callers on the
// mutation path ignore them.
func (a *Adapter) Persist(ctx context.Context, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		a.logger.Error("snapshot encode failed", "error", err)
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "encode snapshot")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if bytes.Equal(a.last, data) {
		return nil
	}

	if err := a.storage.Save(ctx, a.key, Record{Version: SchemaVersion, Data: data}); err != nil {
		a.logger.Warn("snapshot write failed",
			"key", a.key,
			"code", domainerrors.CodeStorageUnavailable,
			"error", err)
		return domainerrors.StorageUnavailable(err, "persist snapshot")
	}
	a.last = data
	return nil
}

// Close closes the underlying storage.
func (a *Adapter) Close() error {
	return a.storage.Close()
}
