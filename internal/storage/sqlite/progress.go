package sqlite

import (
	"context"
	"fmt"

	"github.com/slok/ttdproj/internal/model"
)

// CreateProgressSnapshot stores a snapshot and all its points in a single transaction.
func (r *Repository) CreateProgressSnapshot(ctx context.Context, s model.ProgressSnapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO progress_snapshots (id, observed_at, created_at) VALUES (?, ?, ?)`,
		s.ID, toUnixNano(s.ObservedAt), toUnixNano(s.CreatedAt),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("snapshot with id %s: %w", s.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO progress_points (snapshot_id, ts, percent) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("could not prepare points insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range s.Series {
		if _, err := stmt.ExecContext(ctx, s.ID, toUnixNano(p.Timestamp), p.Percent); err != nil {
			return fmt.Errorf("could not insert point %s: %w", p.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created progress snapshot in repository: %s (%d points)", s.ID, len(s.Series))
	return nil
}

// GetProgressSnapshot retrieves a progress snapshot by ID.
func (r *Repository) GetProgressSnapshot(ctx context.Context, id string) (*model.ProgressSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, observed_at, created_at FROM progress_snapshots WHERE id = ?`, id)

	s, err := r.scanSnapshot(row)
	if err != nil {
		return nil, notFound(fmt.Errorf("could not query snapshot: %w", err), fmt.Sprintf("snapshot %s", id))
	}

	if err := r.loadPoints(ctx, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// GetLatestProgressSnapshot retrieves the most recently observed progress snapshot.
func (r *Repository) GetLatestProgressSnapshot(ctx context.Context) (*model.ProgressSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, observed_at, created_at
		FROM progress_snapshots
		ORDER BY observed_at DESC, id DESC
		LIMIT 1
	`)

	s, err := r.scanSnapshot(row)
	if err != nil {
		return nil, notFound(fmt.Errorf("could not query latest snapshot: %w", err), "latest snapshot")
	}

	if err := r.loadPoints(ctx, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// ListProgressSnapshots returns all progress snapshots, newest first.
func (r *Repository) ListProgressSnapshots(ctx context.Context) ([]model.ProgressSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, observed_at, created_at
		FROM progress_snapshots
		ORDER BY observed_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("could not query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.ProgressSnapshot{}
	for rows.Next() {
		s, err := r.scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range snapshots {
		if err := r.loadPoints(ctx, &snapshots[i]); err != nil {
			return nil, err
		}
	}

	return snapshots, nil
}

func (r *Repository) scanSnapshot(s scanner) (model.ProgressSnapshot, error) {
	var snapshot model.ProgressSnapshot
	var observedAt, createdAt int64

	if err := s.Scan(&snapshot.ID, &observedAt, &createdAt); err != nil {
		return model.ProgressSnapshot{}, err
	}

	snapshot.ObservedAt = fromUnixNano(observedAt)
	snapshot.CreatedAt = fromUnixNano(createdAt)

	return snapshot, nil
}

func (r *Repository) loadPoints(ctx context.Context, s *model.ProgressSnapshot) error {
	rows, err := r.db.QueryContext(ctx, `SELECT ts, percent FROM progress_points WHERE snapshot_id = ? ORDER BY ts ASC`, s.ID)
	if err != nil {
		return fmt.Errorf("could not query snapshot %s points: %w", s.ID, err)
	}
	defer rows.Close()

	series := model.ProgressSeries{}
	for rows.Next() {
		var ts int64
		var percent float64
		if err := rows.Scan(&ts, &percent); err != nil {
			return fmt.Errorf("could not scan point: %w", err)
		}
		series = append(series, model.ProgressPoint{Timestamp: fromUnixNano(ts), Percent: percent})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating points: %w", err)
	}

	s.Series = series
	return nil
}
