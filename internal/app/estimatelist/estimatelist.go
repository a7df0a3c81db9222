package estimatelist

import (
	"context"
	"fmt"

	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/storage"
)

// ServiceConfig is the configuration for the estimate list service.
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

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.EstimateList"})
	return nil
}

// Service lists stored merge estimates.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new estimate list service.
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
	// Limit is the maximum number of estimates returned, 0 means no limit.
	Limit int
}

// Run lists merge estimates, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.MergeEstimate, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	estimates, err := s.repo.ListMergeEstimates(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list merge estimates: %w", err)
	}

	if req.Limit > 0 && len(estimates) > req.Limit {
		estimates = estimates[:req.Limit]
	}

	s.logger.Debugf("found %d merge estimates", len(estimates))
	return estimates, nil
}
