package storage

import (
	"context"

	"github.com/slok/ttdproj/internal/model"
)

// Repository is the interface for progress snapshot and merge estimate persistence.
//
// Latest and list operations order by observation time, newest first.
type Repository interface {
	CreateProgressSnapshot(ctx context.Context, s model.ProgressSnapshot) error
	GetProgressSnapshot(ctx context.Context, id string) (*model.ProgressSnapshot, error)
	GetLatestProgressSnapshot(ctx context.Context) (*model.ProgressSnapshot, error)
	ListProgressSnapshots(ctx context.Context) ([]model.ProgressSnapshot, error)

	CreateMergeEstimate(ctx context.Context, e model.MergeEstimate) error
	GetLatestMergeEstimate(ctx context.Context) (*model.MergeEstimate, error)
	ListMergeEstimates(ctx context.Context) ([]model.MergeEstimate, error)
}
