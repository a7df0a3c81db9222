package io

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/slok/ttdproj/internal/model"
)

// FileRepository loads progress series and merge estimates from YAML or JSON files.
type FileRepository struct {
	fs fs.FS
}

// NewFileRepository creates a new file repository.
func NewFileRepository(filesystem fs.FS) *FileRepository {
	return &FileRepository{fs: filesystem}
}

// NewFileRepositoryForPath returns a file repository rooted at the directory of a
// local path, and the file name relative to it.
func NewFileRepositoryForPath(path string) (*FileRepository, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not resolve %q: %w", path, err)
	}

	return NewFileRepository(os.DirFS(filepath.Dir(abs))), filepath.Base(abs), nil
}

// GetProgress loads a progress series file and returns a validated snapshot without
// identity (ID and CreatedAt are set by the caller).
func (r *FileRepository) GetProgress(ctx context.Context, path string) (model.ProgressSnapshot, error) {
	var f ProgressFile
	if err := r.load(ctx, path, &f); err != nil {
		return model.ProgressSnapshot{}, err
	}

	s, err := f.toModel()
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("invalid progress file: %w", err)
	}

	return s, nil
}

// GetEstimate loads a merge estimate file and returns the estimate without identity
// (ID and CreatedAt are set by the caller).
func (r *FileRepository) GetEstimate(ctx context.Context, path string) (model.MergeEstimate, error) {
	var f EstimateFile
	if err := r.load(ctx, path, &f); err != nil {
		return model.MergeEstimate{}, err
	}

	e, err := f.toModel()
	if err != nil {
		return model.MergeEstimate{}, fmt.Errorf("invalid estimate file: %w", err)
	}

	return e, nil
}

func (r *FileRepository) load(ctx context.Context, path string, out any) error {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// JSON is valid YAML, so the same decoder serves both formats.
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing file: %w", err)
	}

	return nil
}

// ProgressFile represents the file structure of a total difficulty progress series.
type ProgressFile struct {
	// Timestamp is when the series was observed, defaults to the last point timestamp.
	Timestamp string          `yaml:"timestamp"`
	Points    []ProgressEntry `yaml:"points"`
}

// ProgressEntry is a single point, either as a percent or as a decimal total difficulty.
type ProgressEntry struct {
	Timestamp       string   `yaml:"timestamp"`
	Percent         *float64 `yaml:"percent,omitempty"`
	TotalDifficulty string   `yaml:"total_difficulty,omitempty"`
}

func (f ProgressFile) toModel() (model.ProgressSnapshot, error) {
	if len(f.Points) == 0 {
		return model.ProgressSnapshot{}, fmt.Errorf("at least one point is required: %w", model.ErrNotValid)
	}

	series := make(model.ProgressSeries, 0, len(f.Points))
	for i, e := range f.Points {
		p, err := e.toModel()
		if err != nil {
			return model.ProgressSnapshot{}, fmt.Errorf("point %d: %w", i, err)
		}
		series = append(series, p)
	}

	if err := series.Validate(); err != nil {
		return model.ProgressSnapshot{}, err
	}

	observedAt := series[len(series)-1].Timestamp
	if f.Timestamp != "" {
		t, err := model.ParseTimestamp(f.Timestamp)
		if err != nil {
			return model.ProgressSnapshot{}, fmt.Errorf("timestamp: %w", err)
		}
		observedAt = t
	}

	return model.ProgressSnapshot{ObservedAt: observedAt.UTC(), Series: series}, nil
}

func (e ProgressEntry) toModel() (model.ProgressPoint, error) {
	ts, err := model.ParseTimestamp(e.Timestamp)
	if err != nil {
		return model.ProgressPoint{}, err
	}

	switch {
	case e.Percent != nil && e.TotalDifficulty != "":
		return model.ProgressPoint{}, fmt.Errorf("percent and total_difficulty are mutually exclusive: %w", model.ErrNotValid)
	case e.Percent != nil:
		return model.ProgressPoint{Timestamp: ts.UTC(), Percent: *e.Percent}, nil
	case e.TotalDifficulty != "":
		percent, err := model.PercentOfTerminalDifficulty(e.TotalDifficulty)
		if err != nil {
			return model.ProgressPoint{}, err
		}
		// Blocks past the terminal difficulty keep the series bounded.
		return model.ProgressPoint{Timestamp: ts.UTC(), Percent: min(100, percent)}, nil
	default:
		return model.ProgressPoint{}, fmt.Errorf("percent or total_difficulty is required: %w", model.ErrNotValid)
	}
}

// EstimateFile represents the file structure of a merge estimate.
type EstimateFile struct {
	BlockNumber          int64  `yaml:"block_number"`
	EstimatedBlockNumber int64  `yaml:"estimated_block_number"`
	EstimatedDateTime    string `yaml:"estimated_date_time"`
	TotalDifficulty      string `yaml:"total_difficulty"`
	Difficulty           string `yaml:"difficulty"`
	// Timestamp is when the estimate was made.
	Timestamp string `yaml:"timestamp"`
}

func (f EstimateFile) toModel() (model.MergeEstimate, error) {
	if f.EstimatedDateTime == "" {
		return model.MergeEstimate{}, fmt.Errorf("estimated_date_time is required: %w", model.ErrNotValid)
	}

	if f.TotalDifficulty == "" {
		return model.MergeEstimate{}, fmt.Errorf("total_difficulty is required: %w", model.ErrNotValid)
	}

	if f.Timestamp == "" {
		return model.MergeEstimate{}, fmt.Errorf("timestamp is required: %w", model.ErrNotValid)
	}

	observedAt, err := model.ParseTimestamp(f.Timestamp)
	if err != nil {
		return model.MergeEstimate{}, fmt.Errorf("timestamp: %w", err)
	}

	return model.MergeEstimate{
		BlockNumber:          f.BlockNumber,
		EstimatedBlockNumber: f.EstimatedBlockNumber,
		EstimatedDateTime:    f.EstimatedDateTime,
		TotalDifficulty:      f.TotalDifficulty,
		Difficulty:           f.Difficulty,
		ObservedAt:           observedAt.UTC(),
	}, nil
}
