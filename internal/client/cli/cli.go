// Package cli implements the vitrina command line: catalog commands for every
// entity kind plus sync, status, login and logout.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iudanet/vitrina/internal/client/catalog"
	"github.com/iudanet/vitrina/internal/client/iocli"
	"github.com/iudanet/vitrina/internal/client/remote"
	"github.com/iudanet/vitrina/internal/client/storage"
	clientsync "github.com/iudanet/vitrina/internal/client/sync"
	"github.com/iudanet/vitrina/pkg/api"
)

// ErrNoAPIKey is returned when no API key is configured, stored or typed in.
var ErrNoAPIKey = errors.New("no API key: run 'vitrina login' or set VITRINA_API_KEY")

// HealthChecker reports whether the record store is reachable; *remote.Client satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) remote.Result[api.HealthResponse]
}

// Session is what the commands operate on once the API key is known.
type Session struct {
	Catalog *catalog.Catalog
	Sync    clientsync.Service
	Remote  HealthChecker
}

// Opener builds a session for the given API key. apiKey may be empty for
// commands that only need local state.
type Opener func(ctx context.Context, apiKey string) (*Session, error)

// Config holds the settings the commands need from the client configuration.
type Config struct {
	Interactive func() bool // можно ли запрашивать ключ у пользователя
	APIKey      string
	ServerURL   string
}

// Cli holds the state shared by all commands of one invocation.
type Cli struct {
	io          iocli.IO
	authStorage storage.AuthStorage
	open        Opener
	logger      *slog.Logger
	session     *Session
	cfg         Config
}

// New creates a Cli.
func New(cfg Config, io iocli.IO, authStorage storage.AuthStorage, open Opener, logger *slog.Logger) *Cli {
	if cfg.Interactive == nil {
		cfg.Interactive = func() bool { return false }
	}
	return &Cli{
		cfg:         cfg,
		io:          io,
		authStorage: authStorage,
		open:        open,
		logger:      logger,
	}
}

// Setup builds the Cli once flags and configuration are parsed.
type Setup func(cmd *cobra.Command) (*Cli, error)

// NewRootCommand creates the vitrina command tree.
// setup runs before every subcommand; closing what it opened is the caller's job.
func NewRootCommand(version string, setup Setup) *cobra.Command {
	var c *Cli
	get := func() *Cli { return c }

	root := &cobra.Command{
		Use:           "vitrina",
		Short:         "Catalog client that keeps working while the record store is offline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c, err = setup(cmd)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./config.toml or $HOME/.vitrina/config.toml)")
	flags.String("server", "", "record store URL (default http://localhost:8080)")
	flags.String("api-key", "", "record store API key (not recommended, use login or VITRINA_API_KEY)")
	flags.String("backend", "", "local mirror backend: bolt, memory or redis")
	flags.String("db", "", "path to the local bbolt database")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Duration("timeout", 0, "remote request timeout")

	root.AddCommand(
		newKindCommand(get, productCommands()),
		newKindCommand(get, categoryCommands()),
		newKindCommand(get, attributeCommands()),
		newSyncCommand(get),
		newStatusCommand(get),
		newLoginCommand(get),
		newLogoutCommand(get),
	)

	return root
}

// resolveKey returns the API key with priority:
// 1. Configuration (flag, env, config file)
// 2. Key stored by 'vitrina login'
// 3. Interactive prompt without echo (only when prompt is true and stdin is a terminal)
func (c *Cli) resolveKey(ctx context.Context, prompt bool) (string, error) {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey, nil
	}

	authData, err := c.authStorage.GetAuth(ctx)
	switch {
	case err == nil && authData.APIKey != "":
		return authData.APIKey, nil
	case err != nil && !errors.Is(err, storage.ErrAuthNotFound):
		return "", fmt.Errorf("failed to read stored API key: %w", err)
	}

	if !prompt || !c.cfg.Interactive() {
		return "", ErrNoAPIKey
	}

	key, err := c.io.ReadPassword("API key: ")
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// connect opens the session once per invocation.
// Without requireKey a missing key is tolerated: the session then only sees local state.
func (c *Cli) connect(ctx context.Context, requireKey bool) (*Session, error) {
	if c.session != nil {
		return c.session, nil
	}

	key, err := c.resolveKey(ctx, requireKey)
	if err != nil && (requireKey || !errors.Is(err, ErrNoAPIKey)) {
		return nil, err
	}

	session, err := c.open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	c.session = session
	return session, nil
}
