package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/model"
)

// JSONPrinter prints projection information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type pointOutput struct {
	Timestamp time.Time `json:"timestamp"`
	Percent   float64   `json:"percent"`
}

type estimateOutput struct {
	ID                   string    `json:"id"`
	BlockNumber          int64     `json:"block_number"`
	EstimatedBlockNumber int64     `json:"estimated_block_number"`
	EstimatedDateTime    string    `json:"estimated_date_time"`
	TotalDifficulty      string    `json:"total_difficulty"`
	Difficulty           string    `json:"difficulty,omitempty"`
	ObservedAt           time.Time `json:"observed_at"`
	CreatedAt            time.Time `json:"created_at"`
}

type atOutput struct {
	Query time.Time    `json:"query"`
	Point *pointOutput `json:"point"`
	Exact bool         `json:"exact"`
}

// projectionOutput represents the full projection output.
type projectionOutput struct {
	SnapshotID string          `json:"snapshot_id"`
	Target     time.Time       `json:"target"`
	Progress   float64         `json:"progress"`
	Estimate   *estimateOutput `json:"estimate,omitempty"`
	At         *atOutput       `json:"at,omitempty"`
	Historical []pointOutput   `json:"historical"`
	Projected  []pointOutput   `json:"projected"`
}

// snapshotItem represents a snapshot in the list output, points are not included.
type snapshotItem struct {
	ID         string    `json:"id"`
	Points     int       `json:"points"`
	ObservedAt time.Time `json:"observed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintProjection prints a projection in JSON format.
func (j *JSONPrinter) PrintProjection(res project.Result) error {
	output := projectionOutput{
		SnapshotID: res.SnapshotID,
		Target:     res.Target.UTC(),
		Progress:   res.Progress,
		Historical: points(res.Historical),
		Projected:  points(res.Projected),
	}

	if res.Estimate != nil {
		e := estimateToOutput(*res.Estimate)
		output.Estimate = &e
	}

	if res.At != nil {
		output.At = &atOutput{Query: res.At.Query.UTC(), Exact: res.At.Exact}
		if res.At.Found {
			output.At.Point = &pointOutput{Timestamp: res.At.Point.Timestamp.UTC(), Percent: res.At.Point.Percent}
		}
	}

	return j.encode(output)
}

// PrintSnapshotList prints progress snapshots in JSON format without their points.
func (j *JSONPrinter) PrintSnapshotList(snapshots []model.ProgressSnapshot) error {
	items := make([]snapshotItem, len(snapshots))
	for i, s := range snapshots {
		items[i] = snapshotItem{
			ID:         s.ID,
			Points:     len(s.Series),
			ObservedAt: s.ObservedAt.UTC(),
			CreatedAt:  s.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintEstimateList prints merge estimates in JSON format.
func (j *JSONPrinter) PrintEstimateList(estimates []model.MergeEstimate) error {
	items := make([]estimateOutput, len(estimates))
	for i, e := range estimates {
		items[i] = estimateToOutput(e)
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func points(ps []model.ProgressPoint) []pointOutput {
	res := make([]pointOutput, len(ps))
	for i, p := range ps {
		res[i] = pointOutput{Timestamp: p.Timestamp.UTC(), Percent: p.Percent}
	}
	return res
}

func estimateToOutput(e model.MergeEstimate) estimateOutput {
	return estimateOutput{
		ID:                   e.ID,
		BlockNumber:          e.BlockNumber,
		EstimatedBlockNumber: e.EstimatedBlockNumber,
		EstimatedDateTime:    e.EstimatedDateTime,
		TotalDifficulty:      e.TotalDifficulty,
		Difficulty:           e.Difficulty,
		ObservedAt:           e.ObservedAt.UTC(),
		CreatedAt:            e.CreatedAt.UTC(),
	}
}
