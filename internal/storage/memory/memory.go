package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	snapshots map[string]model.ProgressSnapshot
	estimates map[string]model.MergeEstimate
	mu        sync.RWMutex
	logger    log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		snapshots: make(map[string]model.ProgressSnapshot),
		estimates: make(map[string]model.MergeEstimate),
		logger:    cfg.Logger,
	}, nil
}

// CreateProgressSnapshot stores a new progress snapshot.
func (r *Repository) CreateProgressSnapshot(ctx context.Context, s model.ProgressSnapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snapshots[s.ID]; ok {
		return fmt.Errorf("snapshot with id %s: %w", s.ID, model.ErrAlreadyExists)
	}

	r.snapshots[s.ID] = copySnapshot(s)
	r.logger.Debugf("Created progress snapshot in repository: %s", s.ID)

	return nil
}

// GetProgressSnapshot retrieves a progress snapshot by ID.
func (r *Repository) GetProgressSnapshot(ctx context.Context, id string) (*model.ProgressSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", id, model.ErrNotFound)
	}

	s = copySnapshot(s)
	return &s, nil
}

// GetLatestProgressSnapshot retrieves the most recently observed progress snapshot.
func (r *Repository) GetLatestProgressSnapshot(ctx context.Context) (*model.ProgressSnapshot, error) {
	snapshots, err := r.ListProgressSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		return nil, fmt.Errorf("latest snapshot: %w", model.ErrNotFound)
	}

	return &snapshots[0], nil
}

// ListProgressSnapshots returns all progress snapshots, newest first.
func (r *Repository) ListProgressSnapshots(ctx context.Context) ([]model.ProgressSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]model.ProgressSnapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		snapshots = append(snapshots, copySnapshot(s))
	}

	slices.SortFunc(snapshots, func(a, b model.ProgressSnapshot) int {
		return newestFirst(a.ObservedAt.UnixNano(), b.ObservedAt.UnixNano(), a.ID, b.ID)
	})

	return snapshots, nil
}

// CreateMergeEstimate stores a new merge estimate.
func (r *Repository) CreateMergeEstimate(ctx context.Context, e model.MergeEstimate) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid estimate: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.estimates[e.ID]; ok {
		return fmt.Errorf("estimate with id %s: %w", e.ID, model.ErrAlreadyExists)
	}

	r.estimates[e.ID] = e
	r.logger.Debugf("Created merge estimate in repository: %s", e.ID)

	return nil
}

// GetLatestMergeEstimate retrieves the most recently observed merge estimate.
func (r *Repository) GetLatestMergeEstimate(ctx context.Context) (*model.MergeEstimate, error) {
	estimates, err := r.ListMergeEstimates(ctx)
	if err != nil {
		return nil, err
	}

	if len(estimates) == 0 {
		return nil, fmt.Errorf("latest estimate: %w", model.ErrNotFound)
	}

	return &estimates[0], nil
}

// ListMergeEstimates returns all merge estimates, newest first.
func (r *Repository) ListMergeEstimates(ctx context.Context) ([]model.MergeEstimate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	estimates := make([]model.MergeEstimate, 0, len(r.estimates))
	for _, e := range r.estimates {
		estimates = append(estimates, e)
	}

	slices.SortFunc(estimates, func(a, b model.MergeEstimate) int {
		return newestFirst(a.ObservedAt.UnixNano(), b.ObservedAt.UnixNano(), a.ID, b.ID)
	})

	return estimates, nil
}

func newestFirst(aTS, bTS int64, aID, bID string) int {
	if c := cmp.Compare(bTS, aTS); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

func copySnapshot(s model.ProgressSnapshot) model.ProgressSnapshot {
	s.Series = slices.Clone(s.Series)
	return s
}
