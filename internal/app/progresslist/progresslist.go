package progresslist

import (
	"context"
	"fmt"

	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/storage"
)

// ServiceConfig is the configuration for the progress list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProgressList"})
	return nil
}

// Service lists stored progress snapshots.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new progress list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Limit is the maximum number of snapshots returned, 0 means no limit.
	Limit int
}

// Run lists progress snapshots, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.ProgressSnapshot, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	s.logger.Debugf("listing progress snapshots with limit: %d", req.Limit)

	snapshots, err := s.repo.ListProgressSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list progress snapshots: %w", err)
	}

	if req.Limit > 0 && len(snapshots) > req.Limit {
		snapshots = snapshots[:req.Limit]
	}

	s.logger.Debugf("found %d progress snapshots", len(snapshots))
	return snapshots, nil
}
