package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangtimer/internal/config"
	"hangtimer/internal/domain"
)

func backends(t *testing.T) map[string]domain.KeyValueStore {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileStore(filepath.Join(dir, "store.json"))
	require.NoError(t, err)

	db, err := OpenSQLiteStore(filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]domain.KeyValueStore{"file": file, "sqlite": db}
}

func TestStores_GetSet(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get("missing")
			assert.ErrorIs(t, err, domain.ErrKeyNotFound)

			require.NoError(t, kv.Set("a", `{"version":2}`))
			require.NoError(t, kv.Set("b", "two"))
			require.NoError(t, kv.Set("a", "replaced"))

			got, err := kv.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "replaced", got)
			got, err = kv.Get("b")
			require.NoError(t, err)
			assert.Equal(t, "two", got)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v"))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

type recordingStore struct {
	mu     sync.Mutex
	values map[string]string
	writes int
	fail   bool
}

func (r *recordingStore) Get(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (r *recordingStore) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if r.fail {
		return errors.New("disk full")
	}
	if r.values == nil {
		r.values = map[string]string{}
	}
	r.values[key] = value
	return nil
}

func TestAsyncWriter_ReadsPendingAndFlushes(t *testing.T) {
	backend := &recordingStore{}
	w := NewAsyncWriter(backend)

	require.NoError(t, w.Set("k", "1"))
	require.NoError(t, w.Set("k", "2"))
	got, err := w.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	w.Flush()
	v, err := backend.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.LessOrEqual(t, backend.writes, 2)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestAsyncWriter_CloseFlushes(t *testing.T) {
	backend := &recordingStore{}
	w := NewAsyncWriter(backend)
	for i := 0; i < 100; i++ {
		require.NoError(t, w.Set("k", "latest"))
	}
	require.NoError(t, w.Close())

	v, err := backend.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "latest", v)

	require.NoError(t, w.Set("after", "close"))
	v, err = backend.Get("after")
	require.NoError(t, err)
	assert.Equal(t, "close", v)
}

func TestAsyncWriter_SwallowsBackendErrors(t *testing.T) {
	backend := &recordingStore{fail: true}
	w := NewAsyncWriter(backend)

	assert.NoError(t, w.Set("k", "v"))
	w.Flush()
	assert.Equal(t, 1, backend.writes)
	require.NoError(t, w.Close())
}

func TestOpen(t *testing.T) {
	for _, driver := range []string{config.DriverFile, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Store = config.StoreConfig{Driver: driver, Path: filepath.Join(t.TempDir(), "data")}

			h, err := Open(cfg)
			require.NoError(t, err)
			require.NoError(t, h.Set("k", "v"))
			require.NoError(t, h.Close())

			h, err = Open(cfg)
			require.NoError(t, err)
			defer h.Close()
			got, err := h.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v", got)
		})
	}

	_, err := Open(config.Config{Store: config.StoreConfig{Driver: "etcd"}})
	assert.Error(t, err)
}
