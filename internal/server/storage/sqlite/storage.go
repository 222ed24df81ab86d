package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/vitrina/internal/server/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ storage.RecordStorage = (*Storage)(nil)

// Один писатель: документы обновляются read-modify-write внутри транзакции
var connPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Storage keeps catalog documents in a single SQLite records table
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at dbPath and brings its schema up to date.
// ":memory:" gives a throwaway database for tests.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(ctx, db); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return NewWithDB(db), nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	for _, pragma := range connPragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return migrate(ctx, db)
}

// migrate applies the embedded goose migrations
func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// NewWithDB wraps an open database as is, without pragmas or migrations
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db, now: time.Now}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping is used by the health endpoint
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
