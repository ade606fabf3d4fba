package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinaapp/vitrina-store/internal/config"
)

func storageBackends(t *testing.T) map[string]Storage {
	t.Helper()

	badgerStorage, err := NewBadgerStorage(filepath.Join(t.TempDir(), "badger"), nil)
	require.NoError(t, err)

	sqliteStorage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisStorage, err := NewRedisStorage(mr.Addr(), "", nil)
	require.NoError(t, err)

	backends := map[string]Storage{
		"badger": badgerStorage,
		"sqlite": sqliteStorage,
		"redis":  redisStorage,
		"memory": NewMemoryStorage(),
	}
	t.Cleanup(func() {
		for _, s := range backends {
			_ = s.Close()
		}
	})
	return backends
}

func TestStorage_RoundTripAndNotFound(t *testing.T) {
	ctx := context.Background()

	for name, storage := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := storage.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			first := Record{Version: SchemaVersion, Data: []byte(`{"likedItems":["a"]}`)}
			require.NoError(t, storage.Save(ctx, DefaultKey, first))

			got, err := storage.Load(ctx, DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, first, got)

			second := Record{Version: 7, Data: []byte(`{"likedItems":[]}`)}
			require.NoError(t, storage.Save(ctx, DefaultKey, second))

			got, err = storage.Load(ctx, DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, second, got)
		})
	}
}

func TestBadgerStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "badger")

	s, err := NewBadgerStorage(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, DefaultKey, Record{Version: SchemaVersion, Data: []byte(`{}`)}))
	require.NoError(t, s.Close())

	s, err = NewBadgerStorage(path, nil)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Load(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), rec.Data)
}

func TestNewRedisStorage_RequiresAddr(t *testing.T) {
	_, err := NewRedisStorage("", "", nil)
	assert.Error(t, err)
}

func TestOpen_SelectsDriver(t *testing.T) {
	s, err := Open(config.StorageConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = Open(config.StorageConfig{Driver: config.DriverSQLite, Path: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.StorageConfig{Driver: "etcd"}, nil)
	assert.Error(t, err)
}
