package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/vitrina/internal/client/storage"
)

var _ storage.AuthStorage = (*Storage)(nil)

// Ключ единственной записи: клиент работает с одним API ключом
var authKey = []byte("current")

var errNoAuthBucket = errors.New("auth bucket not found")

// SaveAuth replaces the stored API key
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to encode auth data: %w", err)
	}
	return s.updateAuth(func(b *bbolt.Bucket) error {
		return b.Put(authKey, data)
	})
}

// GetAuth returns storage.ErrAuthNotFound until SaveAuth has been called
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		if b == nil {
			return errNoAuthBucket
		}
		// значение валидно только внутри транзакции
		data = cloneValue(b.Get(authKey))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, storage.ErrAuthNotFound
	}

	auth := &storage.AuthData{}
	if err := json.Unmarshal(data, auth); err != nil {
		return nil, fmt.Errorf("failed to decode auth data: %w", err)
	}
	return auth, nil
}

// DeleteAuth forgets the stored key, ErrAuthNotFound if there was none
func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.updateAuth(func(b *bbolt.Bucket) error {
		if b.Get(authKey) == nil {
			return storage.ErrAuthNotFound
		}
		return b.Delete(authKey)
	})
}

func (s *Storage) updateAuth(fn func(b *bbolt.Bucket) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		if b == nil {
			return errNoAuthBucket
		}
		return fn(b)
	})
}

func cloneValue(v []byte) []byte {
	if v == nil {
		return nil
	}
	return append([]byte(nil), v...)
}
