package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no API key has been stored
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrQuotaExceeded indicates that a write would exceed the configured storage capacity
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageUnavailable indicates that local storage is disabled or cannot be reached
	ErrStorageUnavailable = errors.New("storage unavailable")
)
