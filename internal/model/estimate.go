package model

import (
	"fmt"
	"time"
)

// MergeEstimate is a point in time estimation of when the terminal total difficulty
// will be reached.
type MergeEstimate struct {
	ID                   string
	BlockNumber          int64
	EstimatedBlockNumber int64
	// EstimatedDateTime is the estimated TTD instant as received from the source (RFC 3339).
	EstimatedDateTime string
	// TotalDifficulty is the chain total difficulty at BlockNumber, in decimal.
	TotalDifficulty string
	// Difficulty is the block difficulty at BlockNumber, in decimal.
	Difficulty string
	ObservedAt time.Time
	CreatedAt  time.Time
}

// Target returns the estimated instant at which the terminal total difficulty is reached.
func (m MergeEstimate) Target() (time.Time, error) {
	return ParseTimestamp(m.EstimatedDateTime)
}

// Progress returns the fraction ([0, 1]) of the terminal total difficulty already reached.
func (m MergeEstimate) Progress() (float64, error) {
	percent, err := PercentOfTerminalDifficulty(m.TotalDifficulty)
	if err != nil {
		return 0, err
	}

	return min(1, percent/100), nil
}

// Validate validates the merge estimate model.
func (m MergeEstimate) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("estimate id is required: %w", ErrNotValid)
	}

	if m.BlockNumber < 0 {
		return fmt.Errorf("block number cannot be negative: %w", ErrNotValid)
	}

	if m.EstimatedBlockNumber < m.BlockNumber {
		return fmt.Errorf("estimated block number %d is before block number %d: %w", m.EstimatedBlockNumber, m.BlockNumber, ErrNotValid)
	}

	if _, err := m.Target(); err != nil {
		return fmt.Errorf("invalid estimated date time: %w: %w", err, ErrNotValid)
	}

	if _, err := PercentOfTerminalDifficulty(m.TotalDifficulty); err != nil {
		return fmt.Errorf("invalid total difficulty: %w", err)
	}

	if m.Difficulty != "" {
		if _, err := parseDifficulty(m.Difficulty); err != nil {
			return fmt.Errorf("invalid difficulty: %w", err)
		}
	}

	if m.ObservedAt.IsZero() {
		return fmt.Errorf("observed at is required: %w", ErrNotValid)
	}

	if m.CreatedAt.IsZero() {
		return fmt.Errorf("created at is required: %w", ErrNotValid)
	}

	return nil
}

// ParseTimestamp parses an RFC 3339 timestamp into UTC, fractional seconds are optional.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse timestamp %q: %w", s, err)
	}

	return t.UTC(), nil
}
