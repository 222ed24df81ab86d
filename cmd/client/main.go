package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/vitrina/internal/client/catalog"
	"github.com/iudanet/vitrina/internal/client/cli"
	"github.com/iudanet/vitrina/internal/client/iocli"
	"github.com/iudanet/vitrina/internal/client/remote"
	"github.com/iudanet/vitrina/internal/client/storage"
	"github.com/iudanet/vitrina/internal/client/storage/boltdb"
	"github.com/iudanet/vitrina/internal/client/storage/memory"
	"github.com/iudanet/vitrina/internal/client/storage/redisstore"
	clientsync "github.com/iudanet/vitrina/internal/client/sync"
	"github.com/iudanet/vitrina/internal/config"
	"github.com/iudanet/vitrina/internal/logger"
	"github.com/iudanet/vitrina/internal/notify"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// flagKeys maps persistent flags to viper keys
var flagKeys = map[string]string{
	"server":    "server",
	"api-key":   "api_key",
	"backend":   "storage.backend",
	"db":        "storage.path",
	"log-level": "log.level",
	"timeout":   "timeout",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	root := cli.NewRootCommand(fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit), a.setup)
	err := root.ExecuteContext(ctx)

	stop()
	a.close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app owns everything opened for one invocation
type app struct {
	closers []func() error
}

func (a *app) setup(cmd *cobra.Command) (*cli.Cli, error) {
	ctx := cmd.Context()
	flags := cmd.Root().PersistentFlags()

	file, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	v, err := config.NewViper(config.ClientEnvPrefix, file)
	if err != nil {
		return nil, err
	}
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	cfg, err := config.LoadClient(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, syncLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a.closers = append(a.closers, func() error {
		_ = syncLog() // stderr не поддерживает fsync на части платформ
		return nil
	})

	// bbolt хранит ключ и время синхронизации при любом бэкенде зеркала
	local, err := boltdb.NewWithOptions(ctx, cfg.Storage.Path, boltdb.Options{Quota: cfg.Storage.Quota})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	a.closers = append(a.closers, local.Close)

	kv, err := a.mirrorStore(ctx, cfg.Storage, local)
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus()
	events, cancel := bus.Subscribe(64)
	a.closers = append(a.closers, func() error {
		cancel()
		return nil
	})
	go cli.LogEvents(ctx, log, events)

	open := func(ctx context.Context, apiKey string) (*cli.Session, error) {
		client := remote.NewClient(cfg.ServerURL, apiKey, remote.WithTimeout(cfg.Timeout))
		cat := catalog.New(kv, client, bus, log)
		return &cli.Session{
			Catalog: cat,
			Sync:    clientsync.NewService(cat.Reconcilers(), local, bus, log),
			Remote:  client,
		}, nil
	}

	log.Debug("Client configured",
		"server", cfg.ServerURL,
		"backend", cfg.Storage.Backend,
		"db", cfg.Storage.Path)

	return cli.New(cli.Config{
		APIKey:      cfg.APIKey,
		ServerURL:   cfg.ServerURL,
		Interactive: iocli.IsTerminal,
	}, iocli.NewStdio(), local, open, log), nil
}

// mirrorStore selects the key-value store holding the local mirror
func (a *app) mirrorStore(ctx context.Context, cfg config.StorageConfig, local *boltdb.Storage) (storage.KVStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewWithQuota(int(cfg.Quota)), nil
	case config.BackendRedis:
		store, err := redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return local, nil
	}
}

// close releases resources in reverse order of acquisition
func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Error("failed to release resources", "error", err)
	}
}
