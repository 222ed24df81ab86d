package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/vitrina/internal/client/storage"
)

// Get returns the mirror value stored under key
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if s.db == nil {
		return "", false, storage.ErrStorageClosed
	}

	var (
		value string
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMirror)
		if bucket == nil {
			return fmt.Errorf("mirror bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}

		// data валидна только внутри транзакции - копируем в строку
		value = string(data)
		found = true
		return nil
	})

	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}

	return value, found, nil
}

// Set stores value under key, enforcing the configured quota
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMirror)
		if bucket == nil {
			return fmt.Errorf("mirror bucket not found")
		}

		if s.quota > 0 {
			used, err := usedBytes(bucket)
			if err != nil {
				return err
			}

			// Освобождаем место, занятое предыдущим значением ключа
			if old := bucket.Get([]byte(key)); old != nil {
				used -= int64(len(old))
			}

			if used+int64(len(value)) > s.quota {
				return storage.ErrQuotaExceeded
			}
		}

		return bucket.Put([]byte(key), []byte(value))
	})

	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}

	return nil
}

func usedBytes(bucket *bbolt.Bucket) (int64, error) {
	var used int64
	err := bucket.ForEach(func(k, v []byte) error {
		used += int64(len(v))
		return nil
	})
	return used, err
}
