package lib

import (
	"context"
	"fmt"
	"time"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/ttdproj/internal/conventions"
	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/storage"
	"github.com/slok/ttdproj/internal/storage/memory"
	"github.com/slok/ttdproj/internal/storage/sqlite"
)

// StorageType identifies where the client stores progress and estimates.
type StorageType string

const (
	// StorageSQLite stores data in a SQLite database file.
	StorageSQLite StorageType = "sqlite"
	// StorageMemory keeps data in memory, it's lost on Close.
	StorageMemory StorageType = "memory"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.ttdproj/ttdproj.db.
type Config struct {
	// Storage selects the storage backend.
	// Default: [StorageSQLite].
	Storage StorageType

	// DBPath is the SQLite database path, only used with [StorageSQLite].
	// Default: ~/.ttdproj/ttdproj.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent).
	Logger log.Logger

	// Now returns the current time, used to stamp imports.
	// Default: time.Now in UTC.
	Now func() time.Time
}

func (c *Config) defaults() error {
	if c.Storage == "" {
		c.Storage = StorageSQLite
	}

	if c.Storage == StorageSQLite && c.DBPath == "" {
		home := homedir.HomeDir()
		if home == "" {
			return fmt.Errorf("could not get user home dir")
		}
		c.DBPath = conventions.DBPath(home)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
type Client struct {
	repo    storage.Repository
	logger  log.Logger
	now     func() time.Time
	closeFn func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the storage.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		logger: cfg.Logger,
		now:    cfg.Now,
	}

	switch cfg.Storage {
	case StorageSQLite:
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, mapError(fmt.Errorf("could not create repository: %w", err))
		}
		c.repo = repo
		c.closeFn = repo.Close
	case StorageMemory:
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo = repo
	default:
		return nil, fmt.Errorf("unsupported storage type %q: %w", cfg.Storage, ErrNotValid)
	}

	return c, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
