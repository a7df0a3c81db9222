package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/storage/sqlite/migrations"
)

// busyTimeout lets an import wait for a running watch read instead of failing with SQLITE_BUSY.
const busyTimeout = 5 * time.Second

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	// DBPath is the database file, its directory is created if missing.
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository stores progress snapshots and merge estimates in a SQLite database.
// Timestamps are stored as Unix nanoseconds so stored series keep their full precision.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository opens the database at the configured path and brings its schema
// to the latest version.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	version, err := migrate(ctx, db, cfg.Logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cfg.Logger.Debugf("Using SQLite database %s (schema v%d)", cfg.DBPath, version)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close releases the database.
func (r *Repository) Close() error { return r.db.Close() }

func open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to %s: %w", path, err)
	}

	return db, nil
}

// dsn enables cascading point deletes and lets the watch loop read while imports write.
func dsn(path string) string {
	pragmas := url.Values{}
	pragmas.Add("_pragma", "foreign_keys(1)")
	pragmas.Add("_pragma", "journal_mode(WAL)")
	pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))

	return path + "?" + pragmas.Encode()
}

func migrate(ctx context.Context, db *sql.DB, logger log.Logger) (uint, error) {
	m, err := migrations.NewMigrator(db, logger)
	if err != nil {
		return 0, fmt.Errorf("could not create migrator: %w", err)
	}

	if err := m.Up(ctx); err != nil {
		return 0, fmt.Errorf("could not migrate schema: %w", err)
	}

	version, _, err := m.Version(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not get schema version: %w", err)
	}

	return version, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFound maps missing rows to model.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return err
}

func toUnixNano(t time.Time) int64 { return t.UnixNano() }

func fromUnixNano(ns int64) time.Time { return time.Unix(0, ns).UTC() }
