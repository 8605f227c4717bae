package mocks

import (
	"context"
	"time"

	"attendapi/internal/model"
	"attendapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Create(ctx context.Context, a *model.Attendance) (*model.Attendance, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) FindByID(ctx context.Context, id string) (*model.Attendance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) Exists(ctx context.Context, courseID, studentCode, lessonDate string) (bool, error) {
	args := m.Called(ctx, courseID, studentCode, lessonDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttendanceRepository) List(ctx context.Context, f repository.AttendanceFilter) (*repository.PageResult[model.Attendance], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Attendance]), args.Error(1)
}

func (m *MockAttendanceRepository) CountByDateStatus(ctx context.Context, courseID, from, to string) ([]model.StatusCount, error) {
	args := m.Called(ctx, courseID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StatusCount), args.Error(1)
}

func (m *MockAttendanceRepository) ListWithPhotoBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Attendance, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ClearPhoto(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
