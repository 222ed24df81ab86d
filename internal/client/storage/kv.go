package storage

import "context"

//go:generate moq -out kvstore_mock.go . KVStore

// KVStore is the local persistent key-value storage the client mirrors records into.
// Keys and values are strings; structured data is serialized by the caller.
// Implementations must report write failures (quota, closed storage) as errors.
type KVStore interface {
	// Get returns the value for key; ok is false when the key does not exist
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error
}
