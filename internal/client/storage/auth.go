package storage

import (
	"context"
)

//go:generate moq -out authstorage_mock.go . AuthStorage

// AuthStorage defines interface for storing the remote store API key on the client
type AuthStorage interface {
	// SaveAuth stores authentication data
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	DeleteAuth(ctx context.Context) error
}

// AuthData represents the stored API key together with its unverified claims.
// The key is verified by the server on every request; claims are informational.
type AuthData struct {
	APIKey    string `json:"api_key"`
	Role      string `json:"role"`
	ServerURL string `json:"server_url"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds, 0 = no expiry
}
