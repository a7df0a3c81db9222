package project_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/ttdproj/internal/app/project"
	"github.com/slok/ttdproj/internal/log"
	"github.com/slok/ttdproj/internal/model"
	"github.com/slok/ttdproj/internal/projection"
	"github.com/slok/ttdproj/internal/storage/storagemock"
)

var t0 = time.Date(2022, 9, 10, 0, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func testSnapshot() *model.ProgressSnapshot {
	return &model.ProgressSnapshot{
		ID:         "snap-1",
		ObservedAt: at(30 * time.Second),
		Series: model.ProgressSeries{
			{Timestamp: at(-time.Hour), Percent: 20},
			{Timestamp: at(30 * time.Second), Percent: 40},
		},
		CreatedAt: at(time.Minute),
	}
}

func testEstimate() *model.MergeEstimate {
	return &model.MergeEstimate{
		ID:                   "est-1",
		BlockNumber:          15500000,
		EstimatedBlockNumber: 15540000,
		EstimatedDateTime:    "2022-09-10T00:03:00Z",
		TotalDifficulty:      "29375000000000000000000",
		ObservedAt:           at(30 * time.Second),
		CreatedAt:            at(time.Minute),
	}
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config project.ServiceConfig
		expErr bool
	}{
		"Valid config should create the service.": {
			config: project.ServiceConfig{Repository: &storagemock.MockRepository{}, Logger: log.Noop},
		},
		"Missing repository should fail.": {
			config: project.ServiceConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := project.NewService(test.config)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestService_Run(t *testing.T) {
	query := at(90 * time.Second)
	queryExact := at(2 * time.Minute)
	queryBefore := at(-2 * time.Hour)
	queryHistory := at(10 * time.Second)

	tests := map[string]struct {
		mock      func(m *storagemock.MockRepository)
		req       project.Request
		expResult *project.Result
		expErr    bool
		expErrIs  error
	}{
		"Projecting the latest snapshot should use the latest estimate target.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 52},
					{Timestamp: at(2 * time.Minute), Percent: 76},
				},
				Target:     at(3 * time.Minute),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
			},
		},
		"Including the target should append the terminal point.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{IncludeTarget: true},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 52},
					{Timestamp: at(2 * time.Minute), Percent: 76},
					{Timestamp: at(3 * time.Minute), Percent: 100},
				},
				Target:     at(3 * time.Minute),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
			},
		},
		"A target override should be used over the estimate target.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{Target: "2022-09-10T00:02:30Z"},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 55},
					{Timestamp: at(2 * time.Minute), Percent: 85},
				},
				Target:     at(150 * time.Second),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
			},
		},
		"A target override without a stored estimate should use the last observed progress.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(nil, model.ErrNotFound)
			},
			req: project.Request{Target: "2022-09-10T00:03:00Z"},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 52},
					{Timestamp: at(2 * time.Minute), Percent: 76},
				},
				Target:     at(3 * time.Minute),
				Progress:   0.4,
				Recomputed: true,
			},
		},
		"A target before the last observation should return an empty projection.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{Target: "2022-09-09T00:00:00Z"},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected:  []model.ProgressPoint{},
				Target:     at(-24 * time.Hour),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
			},
		},
		"Including a target before the last observation should not append the terminal point.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{Target: "2022-09-09T23:00:00Z", IncludeTarget: true, At: &queryHistory},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected:  []model.ProgressPoint{},
				Target:     at(-time.Hour),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
				At: &project.AtResult{
					Query: queryHistory,
					Point: model.ProgressPoint{Timestamp: at(-time.Hour), Percent: 20},
					Found: true,
				},
			},
		},
		"Including a target equal to the last observation should not append the terminal point.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{Target: "2022-09-10T00:00:30Z", IncludeTarget: true},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected:  []model.ProgressPoint{},
				Target:     at(30 * time.Second),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
			},
		},
		"Querying an instant between points should return the nearest previous point.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{At: &query},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 52},
					{Timestamp: at(2 * time.Minute), Percent: 76},
				},
				Target:     at(3 * time.Minute),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
				At: &project.AtResult{
					Query: query,
					Point: model.ProgressPoint{Timestamp: at(1 * time.Minute), Percent: 52},
					Found: true,
				},
			},
		},
		"Querying an instant on a point should return it as exact.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{At: &queryExact},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 52},
					{Timestamp: at(2 * time.Minute), Percent: 76},
				},
				Target:     at(3 * time.Minute),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
				At: &project.AtResult{
					Query: queryExact,
					Point: model.ProgressPoint{Timestamp: queryExact, Percent: 76},
					Exact: true,
					Found: true,
				},
			},
		},
		"Querying an instant before the history should not be found.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req: project.Request{At: &queryBefore},
			expResult: &project.Result{
				SnapshotID: "snap-1",
				Historical: testSnapshot().Series,
				Projected: []model.ProgressPoint{
					{Timestamp: at(1 * time.Minute), Percent: 52},
					{Timestamp: at(2 * time.Minute), Percent: 76},
				},
				Target:     at(3 * time.Minute),
				Progress:   0.5,
				Estimate:   testEstimate(),
				Recomputed: true,
				At:         &project.AtResult{Query: queryBefore},
			},
		},
		"A missing snapshot should fail with not found.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(nil, model.ErrNotFound)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			expErr:   true,
			expErrIs: model.ErrNotFound,
		},
		"A snapshot without points should fail with invalid state.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(&model.ProgressSnapshot{ID: "empty"}, nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			expErr:   true,
			expErrIs: model.ErrInvalidState,
		},
		"A missing estimate without target override should fail with not found.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(nil, model.ErrNotFound)
			},
			expErr:   true,
			expErrIs: model.ErrNotFound,
		},
		"An estimate storage error should fail even with a target override.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(nil, fmt.Errorf("something"))
			},
			req:    project.Request{Target: "2022-09-10T00:03:00Z"},
			expErr: true,
		},
		"An invalid target override should fail as not valid.": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
				m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)
			},
			req:      project.Request{Target: "tomorrow"},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &storagemock.MockRepository{}
			test.mock(m)

			svc, err := project.NewService(project.ServiceConfig{Repository: m})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)

			m.AssertExpectations(t)

			if test.expErr {
				assert.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
				return
			}
			require.NoError(err)

			// Compare float percents with a delta and the rest by value.
			require.Len(got.Projected, len(test.expResult.Projected))
			for i, exp := range test.expResult.Projected {
				assert.True(exp.Timestamp.Equal(got.Projected[i].Timestamp))
				assert.InDelta(exp.Percent, got.Projected[i].Percent, 1e-9)
			}
			assert.InDelta(test.expResult.Progress, got.Progress, 1e-9)
			assert.True(test.expResult.Target.Equal(got.Target))

			exp := *test.expResult
			exp.Projected, exp.Progress, exp.Target = got.Projected, got.Progress, got.Target
			if exp.At != nil && got.At != nil {
				assert.InDelta(exp.At.Point.Percent, got.At.Point.Percent, 1e-9)
				exp.At.Point.Percent = got.At.Point.Percent
			}
			assert.Equal(&exp, got)
		})
	}
}

func TestService_RunTargetOverrideWithOffset(t *testing.T) {
	m := &storagemock.MockRepository{}
	m.On("GetLatestProgressSnapshot", mock.Anything).Once().Return(testSnapshot(), nil)
	m.On("GetLatestMergeEstimate", mock.Anything).Once().Return(testEstimate(), nil)

	svc, err := project.NewService(project.ServiceConfig{Repository: m})
	require.NoError(t, err)

	got, err := svc.Run(context.Background(), project.Request{Target: "2022-09-10T02:02:30+02:00"})
	require.NoError(t, err)

	assert.Equal(t, at(150*time.Second), got.Target)
	assert.Equal(t, time.UTC, got.Target.Location())
	require.Len(t, got.Projected, 2)
	assert.Equal(t, at(2*time.Minute), got.Projected[1].Timestamp)
}

func TestService_RunWithCache(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := &storagemock.MockRepository{}
	m.On("GetLatestProgressSnapshot", mock.Anything).Return(testSnapshot(), nil)
	m.On("GetLatestMergeEstimate", mock.Anything).Return(testEstimate(), nil)

	svc, err := project.NewService(project.ServiceConfig{Repository: m, Cache: &projection.Cache{}})
	require.NoError(err)

	first, err := svc.Run(context.Background(), project.Request{})
	require.NoError(err)
	assert.True(first.Recomputed)

	// Including the target must not alter the cached projection.
	second, err := svc.Run(context.Background(), project.Request{IncludeTarget: true})
	require.NoError(err)
	assert.False(second.Recomputed)
	assert.Len(second.Projected, 3)

	third, err := svc.Run(context.Background(), project.Request{})
	require.NoError(err)
	assert.False(third.Recomputed)
	assert.Len(third.Projected, 2)
	assert.Equal(first.Projected, third.Projected)

	// A new target invalidates the cached projection.
	fourth, err := svc.Run(context.Background(), project.Request{Target: "2022-09-10T00:10:00Z"})
	require.NoError(err)
	assert.True(fourth.Recomputed)
	assert.Len(fourth.Projected, 9)
}
