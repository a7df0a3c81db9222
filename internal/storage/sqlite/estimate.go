package sqlite

import (
	"context"
	"fmt"

	"github.com/slok/ttdproj/internal/model"
)

const estimateColumns = `
	id, block_number, estimated_block_number,
	estimated_date_time, total_difficulty, difficulty,
	observed_at, created_at
`

// CreateMergeEstimate stores a new merge estimate.
func (r *Repository) CreateMergeEstimate(ctx context.Context, e model.MergeEstimate) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid estimate: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO merge_estimates (`+estimateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.BlockNumber,
		e.EstimatedBlockNumber,
		e.EstimatedDateTime,
		e.TotalDifficulty,
		e.Difficulty,
		toUnixNano(e.ObservedAt),
		toUnixNano(e.CreatedAt),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("estimate with id %s: %w", e.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert estimate: %w", err)
	}

	r.logger.Debugf("Created merge estimate in repository: %s", e.ID)
	return nil
}

// GetLatestMergeEstimate retrieves the most recently observed merge estimate.
func (r *Repository) GetLatestMergeEstimate(ctx context.Context) (*model.MergeEstimate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+estimateColumns+`
		FROM merge_estimates
		ORDER BY observed_at DESC, id DESC
		LIMIT 1
	`)

	e, err := scanEstimate(row)
	if err != nil {
		return nil, notFound(fmt.Errorf("could not query latest estimate: %w", err), "latest estimate")
	}

	return &e, nil
}

// ListMergeEstimates returns all merge estimates, newest first.
func (r *Repository) ListMergeEstimates(ctx context.Context) ([]model.MergeEstimate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+estimateColumns+`
		FROM merge_estimates
		ORDER BY observed_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("could not query estimates: %w", err)
	}
	defer rows.Close()

	estimates := []model.MergeEstimate{}
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return estimates, nil
}

func scanEstimate(s scanner) (model.MergeEstimate, error) {
	var e model.MergeEstimate
	var observedAt, createdAt int64

	err := s.Scan(
		&e.ID,
		&e.BlockNumber,
		&e.EstimatedBlockNumber,
		&e.EstimatedDateTime,
		&e.TotalDifficulty,
		&e.Difficulty,
		&observedAt,
		&createdAt,
	)
	if err != nil {
		return model.MergeEstimate{}, err
	}

	e.ObservedAt = fromUnixNano(observedAt)
	e.CreatedAt = fromUnixNano(createdAt)

	return e, nil
}
