package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/vitrina/internal/config"
	"github.com/iudanet/vitrina/internal/logger"
	"github.com/iudanet/vitrina/internal/server"
	"github.com/iudanet/vitrina/internal/server/handlers"
	"github.com/iudanet/vitrina/internal/server/storage/sqlite"
	"github.com/iudanet/vitrina/pkg/api"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vitrina-server",
		Short:         "Record store for the vitrina catalog",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./config.toml or $HOME/.vitrina/config.toml)")
	flags.String("jwt-secret", "", "API key signing secret, at least 32 characters")

	root.AddCommand(newServeCommand(), newKeygenCommand())
	return root
}

// loadConfig reads server configuration with flags bound to viper keys
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.ServerConfig, error) {
	flags := cmd.Flags()

	file, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	v, err := config.NewViper(config.ServerEnvPrefix, file)
	if err != nil {
		return nil, err
	}

	bindings["jwt-secret"] = "jwt_secret"
	if err := bindFlags(v, cmd, bindings); err != nil {
		return nil, err
	}

	cfg, err := config.LoadServer(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, bindings map[string]string) error {
	for flag, key := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	flags := cmd.Flags()
	flags.String("address", "", "listen address (default :8080)")
	flags.String("db", "", "path to the SQLite database (default vitrina-server.db)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or console")
	flags.Bool("rate-limit", false, "enable per-client rate limiting")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"address":    "address",
		"db":         "db",
		"log-level":  "log.level",
		"log-format": "log.format",
		"rate-limit": "rate_limit.enabled",
	})
	if err != nil {
		return err
	}

	log, syncLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = syncLog() }()

	log.Info("Starting vitrina server",
		"version", Version,
		"build_date", BuildDate,
		"git_commit", GitCommit,
		"address", cfg.Address,
		"db", cfg.DBPath,
		"rate_limit", cfg.RateLimit.Enabled)

	ctx := cmd.Context()

	db, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	return server.New(cfg, log, db, Version).Run(ctx)
}

func newKeygenCommand() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Mint an API key signed with the configured secret",
		Example: "  vitrina-server keygen --role anon\n" +
			"  vitrina-server keygen --role service_role --ttl 720h",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, map[string]string{})
			if err != nil {
				return err
			}

			key, err := handlers.GenerateAPIKey(handlers.KeyConfig{Secret: []byte(cfg.JWTSecret)}, role, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", api.RoleAnon, "key role: anon (read-only) or service_role (read/write)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "key lifetime, 0 for a key that never expires")

	return cmd
}
