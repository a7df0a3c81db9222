// Package storagemock provides testify mocks for the storage interfaces.
package storagemock

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/slok/ttdproj/internal/model"
)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

// CreateProgressSnapshot provides a mock function with given fields: ctx, s
func (_m *MockRepository) CreateProgressSnapshot(ctx context.Context, s model.ProgressSnapshot) error {
	ret := _m.Called(ctx, s)
	return ret.Error(0)
}

// GetProgressSnapshot provides a mock function with given fields: ctx, id
func (_m *MockRepository) GetProgressSnapshot(ctx context.Context, id string) (*model.ProgressSnapshot, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.ProgressSnapshot
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.ProgressSnapshot); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ProgressSnapshot)
	}

	return r0, ret.Error(1)
}

// GetLatestProgressSnapshot provides a mock function with given fields: ctx
func (_m *MockRepository) GetLatestProgressSnapshot(ctx context.Context) (*model.ProgressSnapshot, error) {
	ret := _m.Called(ctx)

	var r0 *model.ProgressSnapshot
	if rf, ok := ret.Get(0).(func(context.Context) *model.ProgressSnapshot); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ProgressSnapshot)
	}

	return r0, ret.Error(1)
}

// ListProgressSnapshots provides a mock function with given fields: ctx
func (_m *MockRepository) ListProgressSnapshots(ctx context.Context) ([]model.ProgressSnapshot, error) {
	ret := _m.Called(ctx)

	var r0 []model.ProgressSnapshot
	if rf, ok := ret.Get(0).(func(context.Context) []model.ProgressSnapshot); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ProgressSnapshot)
	}

	return r0, ret.Error(1)
}

// CreateMergeEstimate provides a mock function with given fields: ctx, e
func (_m *MockRepository) CreateMergeEstimate(ctx context.Context, e model.MergeEstimate) error {
	ret := _m.Called(ctx, e)
	return ret.Error(0)
}

// GetLatestMergeEstimate provides a mock function with given fields: ctx
func (_m *MockRepository) GetLatestMergeEstimate(ctx context.Context) (*model.MergeEstimate, error) {
	ret := _m.Called(ctx)

	var r0 *model.MergeEstimate
	if rf, ok := ret.Get(0).(func(context.Context) *model.MergeEstimate); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.MergeEstimate)
	}

	return r0, ret.Error(1)
}

// ListMergeEstimates provides a mock function with given fields: ctx
func (_m *MockRepository) ListMergeEstimates(ctx context.Context) ([]model.MergeEstimate, error) {
	ret := _m.Called(ctx)

	var r0 []model.MergeEstimate
	if rf, ok := ret.Get(0).(func(context.Context) []model.MergeEstimate); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.MergeEstimate)
	}

	return r0, ret.Error(1)
}
