package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/ttdproj/internal/app/estimateimport"
	"github.com/slok/ttdproj/internal/app/estimatelist"
	"github.com/slok/ttdproj/internal/app/progressimport"
	"github.com/slok/ttdproj/internal/app/progresslist"
	"github.com/slok/ttdproj/internal/model"
	storageio "github.com/slok/ttdproj/internal/storage/io"
)

// ImportProgress imports a historical progress series file (YAML or JSON).
//
// Returns [ErrNotValid] if the file content is not a valid series.
func (c *Client) ImportProgress(ctx context.Context, path string) (*ProgressSnapshot, error) {
	loader, file, err := storageio.NewFileRepositoryForPath(path)
	if err != nil {
		return nil, err
	}

	return c.importProgress(ctx, loader, file)
}

// ImportProgressPoints imports a historical progress series. A zero observedAt
// defaults to the last point timestamp.
//
// Returns [ErrNotValid] if the points are empty, unordered or out of the [0, 100] range.
func (c *Client) ImportProgressPoints(ctx context.Context, points []ProgressPoint, observedAt time.Time) (*ProgressSnapshot, error) {
	series := toInternalPoints(points)
	if observedAt.IsZero() {
		if last, ok := series.Last(); ok {
			observedAt = last.Timestamp
		}
	}

	loader := staticLoader{snapshot: model.ProgressSnapshot{ObservedAt: observedAt.UTC(), Series: series}}
	return c.importProgress(ctx, loader, "points")
}

func (c *Client) importProgress(ctx context.Context, loader progressimport.ProgressLoader, path string) (*ProgressSnapshot, error) {
	svc, err := progressimport.NewService(progressimport.ServiceConfig{
		Loader:     loader,
		Repository: c.repo,
		Logger:     c.logger,
		Now:        c.now,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	snapshot, err := svc.Run(ctx, progressimport.Request{Path: path})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalSnapshot(*snapshot)
	return &out, nil
}

// ListProgress lists stored progress snapshots, newest first. A zero limit lists all.
func (c *Client) ListProgress(ctx context.Context, limit int) ([]ProgressSnapshot, error) {
	svc, err := progresslist.NewService(progresslist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	snapshots, err := svc.Run(ctx, progresslist.Request{Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}

	res := make([]ProgressSnapshot, len(snapshots))
	for i, s := range snapshots {
		res[i] = fromInternalSnapshot(s)
	}
	return res, nil
}

// ImportEstimate imports a merge estimate file (YAML or JSON).
//
// Returns [ErrNotValid] if the estimate target or difficulties are not valid.
func (c *Client) ImportEstimate(ctx context.Context, path string) (*MergeEstimate, error) {
	loader, file, err := storageio.NewFileRepositoryForPath(path)
	if err != nil {
		return nil, err
	}

	return c.importEstimate(ctx, loader, file)
}

// SaveEstimate stores a merge estimate, ID and CreatedAt are ignored and assigned.
//
// Returns [ErrNotValid] if the estimate target or difficulties are not valid.
func (c *Client) SaveEstimate(ctx context.Context, e MergeEstimate) (*MergeEstimate, error) {
	return c.importEstimate(ctx, staticLoader{estimate: toInternalEstimate(e)}, "estimate")
}

func (c *Client) importEstimate(ctx context.Context, loader estimateimport.EstimateLoader, path string) (*MergeEstimate, error) {
	svc, err := estimateimport.NewService(estimateimport.ServiceConfig{
		Loader:     loader,
		Repository: c.repo,
		Logger:     c.logger,
		Now:        c.now,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	estimate, err := svc.Run(ctx, estimateimport.Request{Path: path})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalEstimate(*estimate)
	return &out, nil
}

// ListEstimates lists stored merge estimates, newest first. A zero limit lists all.
func (c *Client) ListEstimates(ctx context.Context, limit int) ([]MergeEstimate, error) {
	svc, err := estimatelist.NewService(estimatelist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	estimates, err := svc.Run(ctx, estimatelist.Request{Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}

	res := make([]MergeEstimate, len(estimates))
	for i, e := range estimates {
		res[i] = fromInternalEstimate(e)
	}
	return res, nil
}

// staticLoader serves already loaded data to the import services.
type staticLoader struct {
	snapshot model.ProgressSnapshot
	estimate model.MergeEstimate
}

func (l staticLoader) GetProgress(context.Context, string) (model.ProgressSnapshot, error) {
	return l.snapshot, nil
}

func (l staticLoader) GetEstimate(context.Context, string) (model.MergeEstimate, error) {
	return l.estimate, nil
}
