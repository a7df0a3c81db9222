package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/app/watch"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/projection"
)

// GenerateProjection projects the last observed point linearly up to 100% at the
// target, with one point per minute. The target point itself is not included and
// a target at or before the observation returns no points.
//
// Returns [ErrInvalidState] if the observed point has no timestamp.
func GenerateProjection(last ProgressPoint, target time.Time) ([]ProgressPoint, error) {
	points, err := projection.Generate(projection.Input{
		LastObserved: model.ProgressPoint{Timestamp: last.Timestamp, Percent: last.Percent},
		Target:       target,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalPoints(points), nil
}

// Project projects the latest stored progress snapshot up to the latest stored
// estimate target, or the target set in opts. Pass nil opts for the defaults.
//
// Returns [ErrNotFound] if there is no snapshot, or no estimate and no target override.
func (c *Client) Project(ctx context.Context, opts *ProjectOpts) (*Projection, error) {
	svc, err := project.NewService(project.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, opts.toRequest())
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalResult(*res)
	return &out, nil
}

// WatchOpts are the options for [Client.Watch].
type WatchOpts struct {
	ProjectOpts
	// Interval is the polling interval. Default: 30s.
	Interval time.Duration
}

// Watch polls the storage and calls fn every time the projection changes, the
// first projection is sent as soon as there is data to project. It blocks until
// ctx is cancelled, or fn returns an error. Pass nil opts for the defaults.
func (c *Client) Watch(ctx context.Context, opts *WatchOpts, fn func(Projection) error) error {
	if fn == nil {
		return fmt.Errorf("handler is required: %w", ErrNotValid)
	}

	if opts == nil {
		opts = &WatchOpts{}
	}

	projector, err := project.NewService(project.ServiceConfig{
		Repository: c.repo,
		Cache:      &projection.Cache{},
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create project service: %w", err)
	}

	svc, err := watch.NewService(watch.ServiceConfig{
		Projector: projector,
		Interval:  opts.Interval,
		Logger:    c.logger,
	})
	if err != nil {
		return mapError(fmt.Errorf("could not create service: %w: %w", err, model.ErrNotValid))
	}

	err = svc.Run(ctx, watch.Request{
		Project: opts.ProjectOpts.toRequest(),
		OnUpdate: func(_ context.Context, res project.Result) error {
			return fn(fromInternalResult(res))
		},
	})

	return mapError(err)
}
