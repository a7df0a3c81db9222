package projection

import (
	"sort"
	"time"

	"github.com/slok/ttdproj/internal/model"
)

// Lookup gives fast timestamp to percent access over a series.
type Lookup struct {
	byMillis map[int64]float64
	points   []model.ProgressPoint
}

// NewLookup indexes the series, the series must be in chronological order.
func NewLookup(series []model.ProgressPoint) Lookup {
	byMillis := make(map[int64]float64, len(series))
	for _, p := range series {
		byMillis[p.Timestamp.UnixMilli()] = p.Percent
	}

	return Lookup{byMillis: byMillis, points: series}
}

// Percent returns the percent of the point at exactly t.
func (l Lookup) Percent(t time.Time) (float64, bool) {
	v, ok := l.byMillis[t.UnixMilli()]
	return v, ok
}

// Nearest returns the last point at or before t.
func (l Lookup) Nearest(t time.Time) (model.ProgressPoint, bool) {
	i := sort.Search(len(l.points), func(i int) bool {
		return l.points[i].Timestamp.After(t)
	})
	if i == 0 {
		return model.ProgressPoint{}, false
	}

	return l.points[i-1], true
}

// Len returns the number of indexed points.
func (l Lookup) Len() int { return len(l.byMillis) }

// Downsample keeps the points aligned to every plus the last point of the series.
// A zero or negative every returns the series as is.
func Downsample(series []model.ProgressPoint, every time.Duration) []model.ProgressPoint {
	if every <= 0 || len(series) == 0 {
		return series
	}

	res := make([]model.ProgressPoint, 0, len(series))
	for i, p := range series {
		last := i == len(series)-1
		if last || p.Timestamp.Truncate(every).Equal(p.Timestamp) {
			res = append(res, p)
		}
	}

	return res
}
