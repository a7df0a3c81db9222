package model

import (
	"fmt"
	"math"
	"time"
)

// ProgressPoint is the fractional progress towards the terminal total difficulty
// at a point in time, expressed as a percent.
type ProgressPoint struct {
	Timestamp time.Time
	Percent   float64
}

// ProgressSeries is a chronologically ordered list of progress points.
type ProgressSeries []ProgressPoint

// Last returns the most recent point of the series.
func (s ProgressSeries) Last() (ProgressPoint, bool) {
	if len(s) == 0 {
		return ProgressPoint{}, false
	}
	return s[len(s)-1], true
}

// Validate validates an observed series: timestamps must be strictly ascending
// and percents must be in the [0, 100] range.
func (s ProgressSeries) Validate() error {
	for i, p := range s {
		if p.Timestamp.IsZero() {
			return fmt.Errorf("point %d timestamp is required: %w", i, ErrNotValid)
		}

		if math.IsNaN(p.Percent) || p.Percent < 0 || p.Percent > 100 {
			return fmt.Errorf("point %d percent %f out of [0, 100] range: %w", i, p.Percent, ErrNotValid)
		}

		if i > 0 && !p.Timestamp.After(s[i-1].Timestamp) {
			return fmt.Errorf("point %d timestamp %s is not after the previous one: %w", i, p.Timestamp, ErrNotValid)
		}
	}

	return nil
}

// ProgressSnapshot is a historical progress series as received from the data source.
// Once stored it's immutable.
type ProgressSnapshot struct {
	ID         string
	ObservedAt time.Time
	Series     ProgressSeries
	CreatedAt  time.Time
}

// Validate validates the snapshot model.
func (s ProgressSnapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("snapshot id is required: %w", ErrNotValid)
	}

	if s.ObservedAt.IsZero() {
		return fmt.Errorf("observed at is required: %w", ErrNotValid)
	}

	if len(s.Series) == 0 {
		return fmt.Errorf("snapshot series requires at least one point: %w", ErrNotValid)
	}

	if err := s.Series.Validate(); err != nil {
		return fmt.Errorf("invalid series: %w", err)
	}

	if s.CreatedAt.IsZero() {
		return fmt.Errorf("created at is required: %w", ErrNotValid)
	}

	return nil
}
