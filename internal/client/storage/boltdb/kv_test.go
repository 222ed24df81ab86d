package boltdb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/vitrina/internal/client/storage"
)

var _ storage.KVStore = (*Storage)(nil)

func createTestKVStorage(t *testing.T, quota int64) *Storage {
	dbPath := filepath.Join(t.TempDir(), "kv_test.db")

	store, err := NewWithOptions(context.Background(), dbPath, Options{Quota: quota})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestStorage_GetSet(t *testing.T) {
	ctx := context.Background()
	store := createTestKVStorage(t, 0)

	_, ok, err := store.Get(ctx, "product:mirror")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "product:mirror", `[{"id":"p1"}]`))

	value, ok, err := store.Get(ctx, "product:mirror")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, value)

	require.NoError(t, store.Set(ctx, "product:mirror", `[]`))
	value, _, err = store.Get(ctx, "product:mirror")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)
}

func TestStorage_Set_Quota(t *testing.T) {
	ctx := context.Background()
	store := createTestKVStorage(t, 16)

	require.NoError(t, store.Set(ctx, "a", strings.Repeat("x", 10)))

	// 10 + 10 > 16
	err := store.Set(ctx, "b", strings.Repeat("y", 10))
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	// перезапись того же ключа учитывает освобождаемое место
	require.NoError(t, store.Set(ctx, "a", strings.Repeat("x", 16)))

	_, ok, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_KV_Closed(t *testing.T) {
	ctx := context.Background()
	store := createTestKVStorage(t, 0)
	require.NoError(t, store.Close())

	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), storage.ErrStorageClosed)
}
