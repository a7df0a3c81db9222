package estimateimport

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

// EstimateLoader loads merge estimates from a source.
type EstimateLoader interface {
	GetEstimate(ctx context.Context, path string) (model.MergeEstimate, error)
}

// ServiceConfig is the configuration for the estimate import service.
type ServiceConfig struct {
	Loader     EstimateLoader
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

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.EstimateImport"})
	return nil
}

// Service imports merge estimates into the repository.
type Service struct {
	loader EstimateLoader
	repo   storage.Repository
	logger log.Logger
	now    func() time.Time
}

// NewService creates a new estimate import service.
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

// Request represents an estimate import request.
type Request struct {
	Path string
}

// Run loads the estimate at the request path and stores it.
func (s *Service) Run(ctx context.Context, req Request) (*model.MergeEstimate, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path is required: %w", model.ErrNotValid)
	}

	estimate, err := s.loader.GetEstimate(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load estimate: %w", err)
	}

	now := s.now()
	estimate.ID = ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	estimate.CreatedAt = now

	if err := estimate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estimate: %w", err)
	}

	if err := s.repo.CreateMergeEstimate(ctx, estimate); err != nil {
		return nil, fmt.Errorf("could not persist estimate: %w", err)
	}

	s.logger.Infof("Imported merge estimate %s (target %s)", estimate.ID, estimate.EstimatedDateTime)

	return &estimate, nil
}
