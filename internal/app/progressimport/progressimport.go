package progressimport

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/storage"
)

// ProgressLoader loads historical progress series from a source.
type ProgressLoader interface {
	GetProgress(ctx context.Context, path string) (model.ProgressSnapshot, error)
}

// ServiceConfig is the configuration for the progress import service.
type ServiceConfig struct {
	Loader     ProgressLoader
	Repository storage.Repository
	Logger     log.Logger
	// Now returns the current time, defaults to time.Now in UTC.
	Now func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Loader == nil {
		return fmt.Errorf("loader is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProgressImport"})
	return nil
}

// Service imports historical progress series into the repository.
type Service struct {
	loader ProgressLoader
	repo   storage.Repository
	logger log.Logger
	now    func() time.Time
}

// NewService creates a new progress import service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		loader: cfg.Loader,
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

// Request represents a progress import request.
type Request struct {
	Path string
}

// Run loads the series at the request path and stores it as a new snapshot.
func (s *Service) Run(ctx context.Context, req Request) (*model.ProgressSnapshot, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path is required: %w", model.ErrNotValid)
	}

	snapshot, err := s.loader.GetProgress(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load progress: %w", err)
	}

	now := s.now()
	snapshot.ID = ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	snapshot.CreatedAt = now

	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid progress snapshot: %w", err)
	}

	if err := s.repo.CreateProgressSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("could not persist progress snapshot: %w", err)
	}

	last, _ := snapshot.Series.Last()
	s.logger.Infof("Imported progress snapshot %s with %d points (last: %.4f%% at %s)", snapshot.ID, len(snapshot.Series), last.Percent, last.Timestamp.Format(time.RFC3339))

	return &snapshot, nil
}
