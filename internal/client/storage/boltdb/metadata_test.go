package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/vitrina/internal/client/storage"
)

func TestStorage_LastSyncTimestamp(t *testing.T) {
	ctx := context.Background()
	store := createTestKVStorage(t, 0)

	// до первой синхронизации
	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, ts)

	first := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, first))
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, first+60))

	ts, err = store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+60, ts)
}

func TestStorage_LastSyncTimestamp_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, 1700000000))
	require.NoError(t, store.Set(ctx, "category:tombstones", `["c1"]`))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), ts)

	value, ok, err := store.Get(ctx, "category:tombstones")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["c1"]`, value)
}

func TestStorage_LastSyncTimestamp_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("metadata bucket missing", func(t *testing.T) {
		store := createTestKVStorage(t, 0)
		require.NoError(t, store.db.Update(func(tx *bbolt.Tx) error {
			return tx.DeleteBucket(bucketMetadata)
		}))

		_, err := store.GetLastSyncTimestamp(ctx)
		assert.ErrorContains(t, err, "metadata bucket not found")

		err = store.SaveLastSyncTimestamp(ctx, 42)
		assert.ErrorContains(t, err, "metadata bucket not found")
	})

	t.Run("closed", func(t *testing.T) {
		store, err := New(ctx, filepath.Join(t.TempDir(), "closed.db"))
		require.NoError(t, err)
		require.NoError(t, store.Close())

		_, err = store.GetLastSyncTimestamp(ctx)
		assert.ErrorIs(t, err, storage.ErrStorageClosed)
		assert.ErrorIs(t, store.SaveLastSyncTimestamp(ctx, 1), storage.ErrStorageClosed)
	})
}
