// Package boltdb keeps the client state in a single bbolt file: the stored
// API key, the local mirror and sync metadata each live in their own bucket.
package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketAuth     = []byte("auth")
	bucketMirror   = []byte("mirror")
	bucketMetadata = []byte("metadata")
)

const defaultOpenTimeout = 5 * time.Second

// Options configures the BoltDB storage.
type Options struct {
	// Quota caps the total size in bytes of values stored in the mirror bucket; 0 disables the cap
	Quota int64
	// OpenTimeout bounds waiting for the file lock held by another client process
	OpenTimeout time.Duration
}

type Storage struct {
	db    *bbolt.DB
	quota int64
}

// New opens dbPath with default options
func New(ctx context.Context, dbPath string) (*Storage, error) {
	return NewWithOptions(ctx, dbPath, Options{})
}

// NewWithOptions opens or creates the file at dbPath and makes sure all buckets exist
func NewWithOptions(ctx context.Context, dbPath string, opts Options) (*Storage, error) {
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaultOpenTimeout
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: opts.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	s := &Storage{db: db, quota: opts.Quota}
	if err := s.initBuckets(); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return s, nil
}

// Close is safe to call more than once
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAuth, bucketMirror, bucketMetadata} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
