package boltdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/vitrina/internal/client/storage"
)

var _ storage.MetadataStorage = (*Storage)(nil)

var keyLastReconcile = []byte("last_reconcile_at")

var errNoMetadataBucket = errors.New("metadata bucket not found")

// SaveLastSyncTimestamp records when every kind was last reconciled (unix seconds)
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(timestamp))

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		if b == nil {
			return errNoMetadataBucket
		}
		return b.Put(keyLastReconcile, buf[:])
	})
	if err != nil {
		return fmt.Errorf("failed to save last reconcile time: %w", err)
	}
	return nil
}

// GetLastSyncTimestamp returns 0 before the first successful sync
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var ts int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		if b == nil {
			return errNoMetadataBucket
		}
		if v := b.Get(keyLastReconcile); len(v) == 8 {
			ts = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read last reconcile time: %w", err)
	}
	return ts, nil
}
