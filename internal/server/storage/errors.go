package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that the row was not found in storage
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidOrder indicates that the order field is not a valid field name
	ErrInvalidOrder = errors.New("invalid order field")
)
