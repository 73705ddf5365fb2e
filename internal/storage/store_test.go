package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
)

func openBackends(t *testing.T) map[string]KVStore {
	t.Helper()
	logger := log.NewNopLogger()
	dir := t.TempDir()

	sqliteStore, err := OpenSQLite(filepath.Join(dir, "cgo", "userdesk.db"), logger)
	require.NoError(t, err)
	poolStore, err := OpenSQLitePool(context.Background(), filepath.Join(dir, "pure", "userdesk.db"), logger)
	require.NoError(t, err)
	fileStore, err := OpenFileStore(filepath.Join(dir, "files"), logger)
	require.NoError(t, err)

	backends := map[string]KVStore{
		"memory":      NewMemoryStore(),
		"file":        fileStore,
		"sqlite":      sqliteStore,
		"sqlite-pure": poolStore,
	}
	t.Cleanup(func() {
		for _, kv := range backends {
			kv.Close()
		}
	})
	return backends
}

func TestKVStoreBackends(t *testing.T) {
	ctx := context.Background()
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "users")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, kv.Set(ctx, "users", []byte(`[{"id":1}]`)))
			value, err := kv.Get(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":1}]`, string(value))

			require.NoError(t, kv.Set(ctx, "users", []byte(`[]`)))
			value, err = kv.Get(ctx, "users")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(value))
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "userdesk.db")

	first, err := OpenSQLite(path, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "users", []byte(`[{"id":7}]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLitePool(ctx, path, log.NewNopLogger())
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7}]`, string(value))
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	fs, err := OpenFileStore(t.TempDir(), log.NewNopLogger())
	require.NoError(t, err)
	assert.Error(t, fs.Set(context.Background(), "../escape", []byte("x")))
	_, err = fs.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestNewStorageSelectsBackend(t *testing.T) {
	cfg := &model.Config{DatabaseType: "memory"}
	kv, err := NewStorage(cfg, log.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	cfg = &model.Config{DatabaseType: "file", DatabaseDir: t.TempDir()}
	kv, err = NewStorage(cfg, log.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, kv)

	_, err = NewStorage(&model.Config{DatabaseType: "postgres"}, log.NewNopLogger())
	assert.Error(t, err)
}
