package projection

import (
	"fmt"
	"time"

	"github.com/slok/ttdproj/internal/model"
)

// DefaultGranularity is the step between generated points when none is set.
const DefaultGranularity = time.Minute

// maxPrealloc bounds the points allocated up front, far targets grow on append.
const maxPrealloc = 24 * 60

// Input is the input of a projection.
type Input struct {
	// LastObserved is the most recent observed progress point.
	LastObserved model.ProgressPoint
	// Target is the instant at which progress is expected to reach 100%.
	Target time.Time
	// Granularity is the step between generated points, defaults to DefaultGranularity.
	Granularity time.Duration
}

func (i *Input) defaults() error {
	if i.Granularity < 0 {
		return fmt.Errorf("granularity can't be negative: %w", model.ErrNotValid)
	}

	if i.Granularity == 0 {
		i.Granularity = DefaultGranularity
	}

	return nil
}

// Generate returns a linear projection from the last observed point up to the target.
//
// Points start at the first granularity boundary strictly after the last observed
// timestamp and stop before the target, the target point itself is never part of the
// result (see TerminalPoint). A target at or before the last observation returns an
// empty series.
func Generate(in Input) ([]model.ProgressPoint, error) {
	if err := in.defaults(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	last := in.LastObserved
	if last.Timestamp.IsZero() {
		return nil, fmt.Errorf("last observed point is required: %w", model.ErrInvalidState)
	}

	window := in.Target.Sub(last.Timestamp)
	if window <= 0 {
		return []model.ProgressPoint{}, nil
	}

	remaining := 100 - last.Percent
	cursor := last.Timestamp.Truncate(in.Granularity).Add(in.Granularity)

	points := make([]model.ProgressPoint, 0, capacity(cursor, in.Target, in.Granularity))
	for ; cursor.Before(in.Target); cursor = cursor.Add(in.Granularity) {
		fraction := float64(cursor.Sub(last.Timestamp)) / float64(window)
		points = append(points, model.ProgressPoint{
			Timestamp: cursor,
			Percent:   last.Percent + fraction*remaining,
		})
	}

	return points, nil
}

// FromSeries projects a historical series up to the target using its last point.
// An empty historical series can't be projected and returns model.ErrInvalidState.
func FromSeries(historical model.ProgressSeries, target time.Time) ([]model.ProgressPoint, error) {
	last, ok := historical.Last()
	if !ok {
		return nil, fmt.Errorf("expected at least one historical point: %w", model.ErrInvalidState)
	}

	return Generate(Input{LastObserved: last, Target: target})
}

// ParseTarget parses a target estimate timestamp (RFC 3339).
func ParseTarget(s string) (time.Time, error) {
	return model.ParseTimestamp(s)
}

// TerminalPoint returns the point at which progress reaches 100%.
func TerminalPoint(target time.Time) model.ProgressPoint {
	return model.ProgressPoint{Timestamp: target, Percent: 100}
}

func capacity(from, to time.Time, step time.Duration) int {
	if !from.Before(to) {
		return 0
	}
	return int(min(to.Sub(from)/step+1, maxPrealloc))
}
