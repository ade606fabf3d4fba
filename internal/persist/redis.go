package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldVersion = "version"
	redisFieldData    = "data"
)

// RedisStorage keeps each record as a hash with version and data fields.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStorage connects to addr and verifies the connection.
func NewRedisStorage(addr, password string, logger *slog.Logger) (*RedisStorage, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if logger != nil {
		logger.Info("Redis connection established", "addr", addr)
	}
	return &RedisStorage{client: client, logger: logger}, nil
}

// Load implements Storage.
func (s *RedisStorage) Load(ctx context.Context, key string) (Record, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Record{}, fmt.Errorf("redis load %s: %w", key, err)
	}
	data, ok := fields[redisFieldData]
	if !ok {
		return Record{}, ErrNotFound
	}
	version, err := strconv.ParseUint(fields[redisFieldVersion], 10, 8)
	if err != nil {
		return Record{}, fmt.Errorf("redis load %s: bad version: %w", key, err)
	}
	return Record{Version: uint8(version), Data: []byte(data)}, nil
}

// Save implements Storage.
func (s *RedisStorage) Save(ctx context.Context, key string, rec Record) error {
	err := s.client.HSet(ctx, key,
		redisFieldVersion, strconv.Itoa(int(rec.Version)),
		redisFieldData, rec.Data,
	).Err()
	if err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

// Close implements Storage.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
