package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveLastSyncTimestamp saves the unix time of the last successful reconciliation
	SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error

	// GetLastSyncTimestamp retrieves the unix time of the last successful reconciliation
	// Returns 0 if no reconciliation has been performed yet
	GetLastSyncTimestamp(ctx context.Context) (int64, error)
}
