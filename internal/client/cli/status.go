package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/vitrina/internal/client/storage"
)

func newStatusCommand(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show login, record store and pending sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return get().runStatus(cmd)
		},
	}
}

func (c *Cli) runStatus(cmd *cobra.Command) error {
	ctx := cmd.Context()
	c.io.Println("=== Status ===")
	c.io.Println()

	c.printKeyStatus(cmd)

	// статус доступен и без ключа: счетчики локальные, /health открыт
	s, err := c.connect(ctx, false)
	if err != nil {
		return err
	}

	c.io.Println()
	if res := s.Remote.Health(ctx); res.OK() {
		c.io.Printf("Record store: %s (%s", c.cfg.ServerURL, res.Value.Status)
		if res.Value.Version != "" {
			c.io.Printf(", version %s", res.Value.Version)
		}
		c.io.Println(")")
	} else {
		c.io.Printf("Record store: %s unreachable (%v)\n", c.cfg.ServerURL, res.Err)
	}

	last, err := s.Sync.LastSyncTime(ctx)
	switch {
	case err != nil:
		c.io.Printf("Warning: failed to get last sync time: %v\n", err)
	case last.IsZero():
		c.io.Println("Last sync: never")
	default:
		c.io.Printf("Last sync: %s\n", last.Format(time.RFC3339))
	}

	pendingCount, err := s.Sync.GetPendingSyncCount(ctx)
	if err != nil {
		// Не прерываем выполнение, просто сообщаем
		c.io.Printf("\nWarning: Failed to get pending sync count: %v\n", err)
		return nil
	}

	c.io.Println()
	if pendingCount > 0 {
		c.io.Printf("⚠️  Pending sync: %d change(s) waiting for the record store\n", pendingCount)
		c.io.Println("Run 'vitrina sync' to replay them.")
	} else {
		c.io.Println("✓ All changes are in the record store")
	}

	return nil
}

func (c *Cli) printKeyStatus(cmd *cobra.Command) {
	if c.cfg.APIKey != "" {
		c.io.Println("API key: from configuration")
		return
	}

	authData, err := c.authStorage.GetAuth(cmd.Context())
	switch {
	case errors.Is(err, storage.ErrAuthNotFound):
		c.io.Println("API key: not logged in (run 'vitrina login')")
		return
	case err != nil:
		c.io.Printf("Warning: failed to read stored API key: %v\n", err)
		return
	}

	c.io.Printf("API key: stored, role %s\n", authData.Role)
	if authData.ExpiresAt == 0 {
		return
	}

	expiresAt := time.Unix(authData.ExpiresAt, 0)
	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("Key expires: %s (in %s)\n", expiresAt.Format(time.RFC3339), remaining.Round(time.Second))
	} else {
		c.io.Printf("⚠️  Key expired at %s. Run 'vitrina login' with a new key.\n", expiresAt.Format(time.RFC3339))
	}
}
