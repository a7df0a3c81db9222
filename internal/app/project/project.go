package project

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/projection"
	"github.com/slok/ttdproj/internal/storage"
)

// ServiceConfig is the configuration for the project service.
type ServiceConfig struct {
	Repository storage.Repository
	// Cache is optional, when set projections are only generated again if the
	// last observed point or the target changed.
	Cache  *projection.Cache
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Project"})
	return nil
}

// Service projects the latest stored progress series up to the merge target.
type Service struct {
	repo   storage.Repository
	cache  *projection.Cache
	logger log.Logger
}

// NewService creates a new project service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		cache:  cfg.Cache,
		logger: cfg.Logger,
	}, nil
}

// Request represents the projection request parameters.
type Request struct {
	// Target overrides the stored estimate target (RFC 3339).
	Target string
	// IncludeTarget appends the 100% point at the target to the projection.
	IncludeTarget bool
	// At queries the progress at a specific instant.
	At *time.Time
}

// AtResult is the answer to a point in time query.
type AtResult struct {
	Query time.Time
	// Point is the point at the query instant or the nearest one before it.
	Point model.ProgressPoint
	// Exact is true when Point timestamp matches the query instant.
	Exact bool
	// Found is false when the query is before the first known point.
	Found bool
}

// Result is the projection result.
type Result struct {
	SnapshotID string
	Historical model.ProgressSeries
	Projected  []model.ProgressPoint
	Target     time.Time
	// Progress is the fraction ([0, 1]) of the terminal total difficulty already reached.
	Progress float64
	// Estimate is the estimate used for the target, nil when the target was overridden
	// and no estimate is stored.
	Estimate *model.MergeEstimate
	At       *AtResult
	// Recomputed is false when the projection was served from the cache.
	Recomputed bool
}

// Run projects the latest progress snapshot.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	snap, est, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	last, ok := snap.Series.Last()
	if !ok {
		return nil, fmt.Errorf("snapshot %s has no points: %w", snap.ID, model.ErrInvalidState)
	}

	target, err := s.target(req, est)
	if err != nil {
		return nil, err
	}

	progress := last.Percent / 100
	if est != nil {
		progress, err = est.Progress()
		if err != nil {
			return nil, fmt.Errorf("invalid estimate %s: %w", est.ID, err)
		}
	}

	projected, recomputed, err := s.project(snap.Series, last, target)
	if err != nil {
		return nil, fmt.Errorf("could not project snapshot %s: %w", snap.ID, err)
	}

	// A reached target has nothing left to project, not even the terminal point.
	if req.IncludeTarget && target.After(last.Timestamp) {
		// Cached series are shared, never append in place.
		projected = append(slices.Clone(projected), projection.TerminalPoint(target))
	}

	res := &Result{
		SnapshotID: snap.ID,
		Historical: snap.Series,
		Projected:  projected,
		Target:     target,
		Progress:   progress,
		Estimate:   est,
		Recomputed: recomputed,
	}

	if req.At != nil {
		res.At = query(*req.At, snap.Series, projected)
	}

	s.logger.Debugf("projected %d points from snapshot %s up to %s", len(projected), snap.ID, target.Format(time.RFC3339))

	return res, nil
}

// load gets the latest snapshot and estimate concurrently. A missing estimate is
// only an error when there is no target override.
func (s *Service) load(ctx context.Context, req Request) (*model.ProgressSnapshot, *model.MergeEstimate, error) {
	var (
		snap *model.ProgressSnapshot
		est  *model.MergeEstimate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap, err = s.repo.GetLatestProgressSnapshot(gctx)
		if err != nil {
			return fmt.Errorf("could not get latest progress snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		e, err := s.repo.GetLatestMergeEstimate(gctx)
		switch {
		case err == nil:
			est = e
		case req.Target != "" && errors.Is(err, model.ErrNotFound):
			// The override makes the estimate optional.
		default:
			return fmt.Errorf("could not get latest merge estimate: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return snap, est, nil
}

func (s *Service) target(req Request, est *model.MergeEstimate) (time.Time, error) {
	if req.Target != "" {
		t, err := projection.ParseTarget(req.Target)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid target: %w: %w", err, model.ErrNotValid)
		}
		return t, nil
	}

	t, err := est.Target()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid estimate %s target: %w: %w", est.ID, err, model.ErrNotValid)
	}

	return t, nil
}

func (s *Service) project(historical model.ProgressSeries, last model.ProgressPoint, target time.Time) ([]model.ProgressPoint, bool, error) {
	if s.cache == nil {
		points, err := projection.FromSeries(historical, target)
		return points, true, err
	}

	return s.cache.Get(projection.Input{LastObserved: last, Target: target})
}

func query(at time.Time, historical model.ProgressSeries, projected []model.ProgressPoint) *AtResult {
	all := make([]model.ProgressPoint, 0, len(historical)+len(projected))
	all = append(all, historical...)
	all = append(all, projected...)
	lookup := projection.NewLookup(all)

	res := &AtResult{Query: at}
	if percent, ok := lookup.Percent(at); ok {
		res.Point = model.ProgressPoint{Timestamp: at, Percent: percent}
		res.Exact = true
		res.Found = true
		return res
	}

	res.Point, res.Found = lookup.Nearest(at)
	return res
}
