package projection_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/projection"
)

var t0 = time.Date(2022, 9, 10, 0, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func TestGenerate(t *testing.T) {
	tests := map[string]struct {
		input     projection.Input
		expPoints []model.ProgressPoint
		expErr    bool
	}{
		"Last observed mid minute should start on the next minute boundary.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(30 * time.Second), Percent: 40},
				Target:       at(3 * time.Minute),
			},
			expPoints: []model.ProgressPoint{
				{Timestamp: at(1 * time.Minute), Percent: 52},
				{Timestamp: at(2 * time.Minute), Percent: 76},
			},
		},
		"Last observed on a minute boundary should not be emitted again.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 0},
				Target:       at(4 * time.Minute),
			},
			expPoints: []model.ProgressPoint{
				{Timestamp: at(1 * time.Minute), Percent: 25},
				{Timestamp: at(2 * time.Minute), Percent: 50},
				{Timestamp: at(3 * time.Minute), Percent: 75},
			},
		},
		"Target equal to the last observation should return an empty series.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 40},
				Target:       at(0),
			},
			expPoints: []model.ProgressPoint{},
		},
		"Target before the last observation should return an empty series.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(time.Hour), Percent: 40},
				Target:       at(0),
			},
			expPoints: []model.ProgressPoint{},
		},
		"Target before the next minute boundary should return an empty series.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(10 * time.Second), Percent: 40},
				Target:       at(50 * time.Second),
			},
			expPoints: []model.ProgressPoint{},
		},
		"Target exactly on the next minute boundary should return an empty series.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(10 * time.Second), Percent: 40},
				Target:       at(time.Minute),
			},
			expPoints: []model.ProgressPoint{},
		},
		"Last observed at 100 percent should return a flat line.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 100},
				Target:       at(3 * time.Minute),
			},
			expPoints: []model.ProgressPoint{
				{Timestamp: at(1 * time.Minute), Percent: 100},
				{Timestamp: at(2 * time.Minute), Percent: 100},
			},
		},
		"Last observed over 100 percent should not be clamped.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 110},
				Target:       at(2 * time.Minute),
			},
			expPoints: []model.ProgressPoint{
				{Timestamp: at(1 * time.Minute), Percent: 105},
			},
		},
		"A custom granularity should be used as step.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(10 * time.Minute), Percent: 50},
				Target:       at(3 * time.Hour),
				Granularity:  time.Hour,
			},
			expPoints: []model.ProgressPoint{
				{Timestamp: at(1 * time.Hour), Percent: 50 + 50*(50.0/170.0)},
				{Timestamp: at(2 * time.Hour), Percent: 50 + 50*(110.0/170.0)},
			},
		},
		"A negative granularity should fail.": {
			input: projection.Input{
				LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 50},
				Target:       at(time.Hour),
				Granularity:  -time.Minute,
			},
			expErr: true,
		},
		"A missing last observed point should fail.": {
			input: projection.Input{
				Target: at(time.Hour),
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			got, err := projection.Generate(test.input)

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			require.Len(got, len(test.expPoints))
			for i, exp := range test.expPoints {
				assert.Equal(exp.Timestamp, got[i].Timestamp)
				assert.InDelta(exp.Percent, got[i].Percent, 1e-9)
			}
		})
	}
}

func TestGenerateLongWindow(t *testing.T) {
	in := projection.Input{
		LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 0},
		Target:       at(2 * 365 * 24 * time.Hour),
		Granularity:  time.Hour,
	}

	got, err := projection.Generate(in)
	require.NoError(t, err)
	require.Len(t, got, 2*365*24-1)
	assert.Equal(t, at(time.Hour), got[0].Timestamp)
	assert.Equal(t, at((2*365*24-1)*time.Hour), got[len(got)-1].Timestamp)
}

func TestGenerateMissingLastObservedIsInvalidState(t *testing.T) {
	_, err := projection.Generate(projection.Input{Target: at(time.Hour)})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestGenerateProperties(t *testing.T) {
	inputs := map[string]projection.Input{
		"short window": {
			LastObserved: model.ProgressPoint{Timestamp: at(17 * time.Second), Percent: 97.3},
			Target:       at(42*time.Minute + 5*time.Second),
		},
		"multi day window": {
			LastObserved: model.ProgressPoint{Timestamp: at(3*time.Hour + 59*time.Second), Percent: 91.12},
			Target:       at(6*24*time.Hour + 6*time.Hour + 42*time.Minute + 42*time.Second),
		},
		"window starting at zero percent": {
			LastObserved: model.ProgressPoint{Timestamp: at(0), Percent: 0},
			Target:       at(24 * time.Hour),
		},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			got, err := projection.Generate(in)
			require.NoError(err)
			require.NotEmpty(got)

			last := in.LastObserved
			expFirst := last.Timestamp.Truncate(time.Minute).Add(time.Minute)
			assert.Equal(expFirst, got[0].Timestamp)

			for i, p := range got {
				assert.True(p.Timestamp.After(last.Timestamp), "point %d should be after the last observation", i)
				assert.True(p.Timestamp.Before(in.Target), "point %d should be before the target", i)
				assert.GreaterOrEqual(p.Percent, last.Percent)
				assert.LessOrEqual(p.Percent, 100.0)

				if i > 0 {
					assert.Equal(time.Minute, p.Timestamp.Sub(got[i-1].Timestamp))
					assert.GreaterOrEqual(p.Percent, got[i-1].Percent)
				}
			}

			// The step after the last point would be at or after the target.
			assert.False(got[len(got)-1].Timestamp.Add(time.Minute).Before(in.Target))

			// Same input, same output.
			again, err := projection.Generate(in)
			require.NoError(err)
			assert.Equal(got, again)
		})
	}
}

func TestFromSeries(t *testing.T) {
	tests := map[string]struct {
		historical model.ProgressSeries
		target     time.Time
		expLen     int
		expErrIs   error
	}{
		"An empty historical series should fail with invalid state.": {
			historical: model.ProgressSeries{},
			target:     at(time.Hour),
			expErrIs:   model.ErrInvalidState,
		},
		"The projection should start from the last historical point.": {
			historical: model.ProgressSeries{
				{Timestamp: at(-48 * time.Hour), Percent: 80},
				{Timestamp: at(-24 * time.Hour), Percent: 90},
				{Timestamp: at(0), Percent: 95},
			},
			target: at(time.Hour),
			expLen: 59,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := projection.FromSeries(test.historical, test.target)

			if test.expErrIs != nil {
				assert.ErrorIs(t, err, test.expErrIs)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, test.expLen)
			assert.Equal(t, at(time.Minute), got[0].Timestamp)
		})
	}
}

func TestParseTarget(t *testing.T) {
	tests := map[string]struct {
		value     string
		expTarget time.Time
		expErr    bool
	}{
		"UTC timestamp": {
			value:     "2022-09-15T06:42:42Z",
			expTarget: time.Date(2022, 9, 15, 6, 42, 42, 0, time.UTC),
		},
		"Timestamp with fractional seconds": {
			value:     "2022-09-15T06:42:42.500Z",
			expTarget: time.Date(2022, 9, 15, 6, 42, 42, 500_000_000, time.UTC),
		},
		"Timestamp with offset": {
			value:     "2022-09-15T08:42:42+02:00",
			expTarget: time.Date(2022, 9, 15, 6, 42, 42, 0, time.UTC),
		},
		"Invalid timestamp": {
			value:  "soon",
			expErr: true,
		},
		"Empty timestamp": {
			value:  "",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := projection.ParseTarget(test.value)
			if test.expErr {
				var perr *time.ParseError
				assert.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expTarget, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestTerminalPoint(t *testing.T) {
	in := projection.Input{
		LastObserved: model.ProgressPoint{Timestamp: at(30 * time.Second), Percent: 40},
		Target:       at(3 * time.Minute),
	}

	got, err := projection.Generate(in)
	require.NoError(t, err)

	// The generator never emits the target point.
	for _, p := range got {
		assert.False(t, p.Timestamp.Equal(in.Target))
	}

	assert.Equal(t, model.ProgressPoint{Timestamp: in.Target, Percent: 100}, projection.TerminalPoint(in.Target))
}
