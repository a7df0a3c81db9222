package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/model"
)

// TablePrinter prints projection information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintProjection prints a projection summary followed by the last observed point
// and the projected points.
func (t *TablePrinter) PrintProjection(res project.Result) error {
	fmt.Fprintf(t.writer, "Snapshot:   %s\n", res.SnapshotID)
	fmt.Fprintf(t.writer, "Progress:   %s of TTD\n", FormatPercent(res.Progress*100))
	fmt.Fprintf(t.writer, "Target:     %s (%s)\n", FormatTimestamp(res.Target), TimeUntil(res.Target))

	if res.Estimate != nil {
		fmt.Fprintf(t.writer, "Estimate:   %s\n", res.Estimate.ID)
		fmt.Fprintf(t.writer, "Blocks:     %d -> %d\n", res.Estimate.BlockNumber, res.Estimate.EstimatedBlockNumber)
		fmt.Fprintf(t.writer, "TD:         %s\n", FormatDifficulty(res.Estimate.TotalDifficulty))
	}

	if res.At != nil {
		if res.At.Found {
			fmt.Fprintf(t.writer, "At:         %s -> %s\n", FormatTimestamp(res.At.Point.Timestamp), FormatPercent(res.At.Point.Percent))
		} else {
			fmt.Fprintf(t.writer, "At:         %s -> unknown\n", FormatTimestamp(res.At.Query))
		}
	}

	fmt.Fprintln(t.writer)

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "TIMESTAMP\tPERCENT\tKIND")

	// Print rows.
	if last, ok := res.Historical.Last(); ok {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", FormatTimestamp(last.Timestamp), FormatPercent(last.Percent), "observed")
	}
	for _, p := range res.Projected {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", FormatTimestamp(p.Timestamp), FormatPercent(p.Percent), "projected")
	}

	return nil
}

// PrintSnapshotList prints progress snapshots in a table format.
func (t *TablePrinter) PrintSnapshotList(snapshots []model.ProgressSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tPOINTS\tLAST\tOBSERVED\tCREATED")

	// Print rows.
	for _, s := range snapshots {
		last := "-"
		if p, ok := s.Series.Last(); ok {
			last = FormatPercent(p.Percent)
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			s.ID,
			len(s.Series),
			last,
			FormatTimestamp(s.ObservedAt),
			TimeAgo(s.CreatedAt),
		)
	}

	return nil
}

// PrintEstimateList prints merge estimates in a table format.
func (t *TablePrinter) PrintEstimateList(estimates []model.MergeEstimate) error {
	if len(estimates) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tBLOCK\tTARGET BLOCK\tTARGET\tPROGRESS\tOBSERVED")

	// Print rows.
	for _, e := range estimates {
		progress := "-"
		if p, err := e.Progress(); err == nil {
			progress = FormatPercent(p * 100)
		}

		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			e.ID,
			e.BlockNumber,
			e.EstimatedBlockNumber,
			e.EstimatedDateTime,
			progress,
			FormatTimestamp(e.ObservedAt),
		)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
