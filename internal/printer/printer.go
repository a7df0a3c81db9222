package printer

import (
	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/model"
)

// Printer knows how to print projections and stored data in different formats.
type Printer interface {
	PrintProjection(res project.Result) error
	PrintSnapshotList(snapshots []model.ProgressSnapshot) error
	PrintEstimateList(estimates []model.MergeEstimate) error
	PrintMessage(msg string) error
}
