package lib

import (
	"errors"
	"time"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/model"
)

var (
	// ErrNotFound is returned when there is no stored data to work with.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when the data is already stored.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when the input is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrInvalidState is returned when the stored data can't be projected.
	ErrInvalidState = errors.New("invalid state")
)

// TotalTerminalDifficulty is the total difficulty at which progress reaches 100%.
const TotalTerminalDifficulty = model.TotalTerminalDifficulty

// ProgressPoint is the progress towards the terminal total difficulty at an instant.
type ProgressPoint struct {
	Timestamp time.Time
	// Percent is in the [0, 100] range for observed points.
	Percent float64
}

// ProgressSnapshot is a stored historical progress series.
type ProgressSnapshot struct {
	// ID is the unique identifier (ULID) assigned on import.
	ID string
	// ObservedAt is when the series was observed.
	ObservedAt time.Time
	// Points are in chronological order.
	Points []ProgressPoint
	// CreatedAt is when the series was imported.
	CreatedAt time.Time
}

// MergeEstimate is a stored estimation of when the terminal total difficulty is reached.
type MergeEstimate struct {
	ID                   string
	BlockNumber          int64
	EstimatedBlockNumber int64
	// EstimatedDateTime is the estimated TTD instant (RFC 3339).
	EstimatedDateTime string
	// TotalDifficulty is the total difficulty at BlockNumber, in decimal.
	TotalDifficulty string
	// Difficulty is the block difficulty at BlockNumber, in decimal. Optional.
	Difficulty string
	ObservedAt time.Time
	CreatedAt  time.Time
}

// ProjectOpts are the options for [Client.Project].
type ProjectOpts struct {
	// Target overrides the stored estimate target (RFC 3339).
	Target string
	// IncludeTarget appends the 100% point at the target to the projection.
	IncludeTarget bool
	// At queries the progress at a specific instant, see [Projection].At.
	At *time.Time
}

// AtPoint is the answer to a [ProjectOpts].At query.
type AtPoint struct {
	// Point is the point at the queried instant or the closest one before it.
	Point ProgressPoint
	// Exact is true when the point is at the queried instant.
	Exact bool
}

// Projection is a projection of the latest stored progress.
type Projection struct {
	SnapshotID string
	// Historical is the stored series the projection starts from.
	Historical []ProgressPoint
	// Projected are the generated points, one minute apart.
	Projected []ProgressPoint
	Target    time.Time
	// Progress is the fraction ([0, 1]) of the terminal total difficulty already reached.
	Progress float64
	// Estimate is nil when the target was overridden and no estimate is stored.
	Estimate *MergeEstimate
	// At is nil when not requested or when the instant is before any known point.
	At *AtPoint
}

func fromInternalPoints(ps []model.ProgressPoint) []ProgressPoint {
	res := make([]ProgressPoint, len(ps))
	for i, p := range ps {
		res[i] = ProgressPoint{Timestamp: p.Timestamp, Percent: p.Percent}
	}
	return res
}

func toInternalPoints(ps []ProgressPoint) model.ProgressSeries {
	res := make(model.ProgressSeries, len(ps))
	for i, p := range ps {
		res[i] = model.ProgressPoint{Timestamp: p.Timestamp.UTC(), Percent: p.Percent}
	}
	return res
}

func fromInternalSnapshot(s model.ProgressSnapshot) ProgressSnapshot {
	return ProgressSnapshot{
		ID:         s.ID,
		ObservedAt: s.ObservedAt,
		Points:     fromInternalPoints(s.Series),
		CreatedAt:  s.CreatedAt,
	}
}

func fromInternalEstimate(e model.MergeEstimate) MergeEstimate {
	return MergeEstimate{
		ID:                   e.ID,
		BlockNumber:          e.BlockNumber,
		EstimatedBlockNumber: e.EstimatedBlockNumber,
		EstimatedDateTime:    e.EstimatedDateTime,
		TotalDifficulty:      e.TotalDifficulty,
		Difficulty:           e.Difficulty,
		ObservedAt:           e.ObservedAt,
		CreatedAt:            e.CreatedAt,
	}
}

func toInternalEstimate(e MergeEstimate) model.MergeEstimate {
	return model.MergeEstimate{
		BlockNumber:          e.BlockNumber,
		EstimatedBlockNumber: e.EstimatedBlockNumber,
		EstimatedDateTime:    e.EstimatedDateTime,
		TotalDifficulty:      e.TotalDifficulty,
		Difficulty:           e.Difficulty,
		ObservedAt:           e.ObservedAt.UTC(),
	}
}

func fromInternalResult(r project.Result) Projection {
	p := Projection{
		SnapshotID: r.SnapshotID,
		Historical: fromInternalPoints(r.Historical),
		Projected:  fromInternalPoints(r.Projected),
		Target:     r.Target,
		Progress:   r.Progress,
	}

	if r.Estimate != nil {
		e := fromInternalEstimate(*r.Estimate)
		p.Estimate = &e
	}

	if r.At != nil && r.At.Found {
		p.At = &AtPoint{
			Point: ProgressPoint{Timestamp: r.At.Point.Timestamp, Percent: r.At.Point.Percent},
			Exact: r.At.Exact,
		}
	}

	return p
}

func (o *ProjectOpts) toRequest() project.Request {
	if o == nil {
		return project.Request{}
	}

	return project.Request{
		Target:        o.Target,
		IncludeTarget: o.IncludeTarget,
		At:            o.At,
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return &mappedError{original: err, sentinel: ErrNotFound}
	case errors.Is(err, model.ErrAlreadyExists):
		return &mappedError{original: err, sentinel: ErrAlreadyExists}
	case errors.Is(err, model.ErrNotValid):
		return &mappedError{original: err, sentinel: ErrNotValid}
	case errors.Is(err, model.ErrInvalidState):
		return &mappedError{original: err, sentinel: ErrInvalidState}
	default:
		return err
	}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
