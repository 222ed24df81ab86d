package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/iudanet/vitrina/internal/client/storage"
	"github.com/iudanet/vitrina/pkg/api"
)

// keyClaims are the claims of a record store API key.
// The client never holds the signing secret, so they are read unverified.
type keyClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func newLoginCommand(get func() *Cli) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the record store API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().runLogin(cmd, key)
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key issued by 'vitrina-server keygen' (prompted when empty)")
	return cmd
}

func newLogoutCommand(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().runLogout(cmd)
		},
	}
}

func (c *Cli) runLogin(cmd *cobra.Command, key string) error {
	c.io.Println("=== Login ===")

	if key == "" {
		if !c.cfg.Interactive() {
			return fmt.Errorf("missing API key, use --key")
		}
		var err error
		key, err = c.io.ReadPassword("API key: ")
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
	}

	claims, err := parseKeyClaims(key)
	if err != nil {
		return err
	}

	authData := &storage.AuthData{
		APIKey:    key,
		Role:      claims.Role,
		ServerURL: c.cfg.ServerURL,
	}
	if claims.ExpiresAt != nil {
		if claims.ExpiresAt.Before(time.Now()) {
			return fmt.Errorf("API key expired at %s", claims.ExpiresAt.Format(time.RFC3339))
		}
		authData.ExpiresAt = claims.ExpiresAt.Unix()
	}

	if err := c.authStorage.SaveAuth(cmd.Context(), authData); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Role: %s\n", describeRole(claims.Role))
	if authData.ExpiresAt != 0 {
		c.io.Printf("Key expires: %s\n", time.Unix(authData.ExpiresAt, 0).Format(time.RFC3339))
	}
	return nil
}

func (c *Cli) runLogout(cmd *cobra.Command) error {
	c.io.Println("=== Logout ===")

	err := c.authStorage.DeleteAuth(cmd.Context())
	if errors.Is(err, storage.ErrAuthNotFound) {
		c.io.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("The stored API key has been deleted.")
	return nil
}

// parseKeyClaims reads the claims of key without verifying its signature.
func parseKeyClaims(key string) (*keyClaims, error) {
	claims := &keyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return nil, fmt.Errorf("malformed API key: %w", err)
	}

	switch claims.Role {
	case api.RoleAnon, api.RoleService:
		return claims, nil
	default:
		return nil, fmt.Errorf("API key has unknown role %q", claims.Role)
	}
}

func describeRole(role string) string {
	if role == api.RoleService {
		return role + " (read/write)"
	}
	return role + " (read-only)"
}
