package persist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vitrinaapp/vitrina-store/internal/config"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

// ErrNotFound is returned by Storage.Load when nothing is stored under a key.
var ErrNotFound = domainerrors.NotFound("snapshot not found")

// Record is one stored snapshot blob plus the schema version it was written with.
type Record struct {
	Data    []byte
	Version uint8
}

// Storage is durable key/value storage for snapshot records.
type Storage interface {
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, rec Record) error
	Close() error
}

// Open creates the storage backend selected by cfg.
func Open(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		return NewBadgerStorage(filepath.Join(cfg.Path, "badger"), logger)
	case config.DriverSQLite:
		return NewSQLiteStorage(filepath.Join(cfg.Path, "vitrina.db"), logger)
	case config.DriverRedis:
		return NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, logger)
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
