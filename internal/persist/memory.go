package persist

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStorage is a process-local Storage. Nothing survives a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]Record)}
}

// Load implements Storage.
func (s *MemoryStorage) Load(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{Version: rec.Version, Data: bytes.Clone(rec.Data)}, nil
}

// Save implements Storage.
func (s *MemoryStorage) Save(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = Record{Version: rec.Version, Data: bytes.Clone(rec.Data)}
	return nil
}

// Close implements Storage.
func (s *MemoryStorage) Close() error { return nil }
