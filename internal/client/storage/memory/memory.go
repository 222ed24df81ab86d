// Package memory provides an in-process KVStore used by tests and by the
// client when started with an in-memory database.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/vitrina/internal/client/storage"
)

// Store is a map-backed KVStore with an optional byte quota.
type Store struct {
	data  map[string]string
	err   error
	quota int
	mu    sync.RWMutex
}

// New creates an empty store without a quota.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// NewWithQuota creates an empty store whose values may not exceed quota bytes in total.
func NewWithQuota(quota int) *Store {
	s := New()
	s.quota = quota
	return s
}

// Fail makes every subsequent call return err; Fail(nil) restores the store.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return "", false, s.err
	}

	value, ok := s.data[key]
	return value, ok, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	if s.quota > 0 {
		used := 0
		for k, v := range s.data {
			if k != key {
				used += len(v)
			}
		}
		if used+len(value) > s.quota {
			return storage.ErrQuotaExceeded
		}
	}

	s.data[key] = value
	return nil
}

// Keys returns the number of stored keys.
func (s *Store) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
