package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/projection"
)

// DefaultInterval is the polling interval when none is set.
const DefaultInterval = 30 * time.Second

// Projector projects the latest stored progress.
type Projector interface {
	Run(ctx context.Context, req project.Request) (*project.Result, error)
}

// ServiceConfig is the configuration for the watch service.
type ServiceConfig struct {
	Projector Projector
	Interval  time.Duration
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Projector == nil {
		return fmt.Errorf("projector is required")
	}

	if c.Interval < 0 {
		return fmt.Errorf("interval can't be negative")
	}

	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Watch"})
	return nil
}

// Service keeps a projection up to date while new progress and estimates are stored.
type Service struct {
	projector Projector
	interval  time.Duration
	latest    projection.Latest
	logger    log.Logger
}

// NewService creates a new watch service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		projector: cfg.Projector,
		interval:  cfg.Interval,
		logger:    cfg.Logger,
	}, nil
}

// Request represents the watch request parameters.
type Request struct {
	Project project.Request
	// OnUpdate is called with every new projection.
	OnUpdate func(ctx context.Context, res project.Result) error
}

// Run polls until the context is cancelled. The first poll happens right away.
// Missing data is not an error, the watch keeps waiting for it.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.OnUpdate == nil {
		return fmt.Errorf("update handler is required: %w", model.ErrNotValid)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.poll(ctx, req); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			s.logger.Debugf("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Latest returns the last published projection, nil if there is none yet.
func (s *Service) Latest() []model.ProgressPoint {
	series, _ := s.latest.Load()
	return series
}

func (s *Service) poll(ctx context.Context, req Request) error {
	ticket := s.latest.Next()

	res, err := s.projector.Run(ctx, req.Project)
	switch {
	case ctx.Err() != nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		s.logger.Debugf("nothing to project yet: %s", err)
		return nil
	case err != nil:
		s.logger.Warningf("could not project: %s", err)
		return nil
	}

	if !res.Recomputed {
		return nil
	}

	if !s.latest.Publish(ticket, res.Projected) {
		s.logger.Debugf("discarding stale projection %d", ticket)
		return nil
	}

	s.logger.Infof("new projection from snapshot %s with %d points", res.SnapshotID, len(res.Projected))

	if err := req.OnUpdate(ctx, *res); err != nil {
		return fmt.Errorf("could not handle projection update: %w", err)
	}

	return nil
}
