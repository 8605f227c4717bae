package mocks

import (
	"context"
	"io"

	"attendapi/internal/model"
	"attendapi/internal/roster"
	"attendapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) CheckIn(ctx context.Context, req service.CheckInRequest) (*model.Attendance, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attendance), args.Error(1)
}

func (m *MockAttendanceService) ListByCourse(ctx context.Context, actor service.Actor, courseID, date string, limit, offset int) (*service.AttendanceListResult, error) {
	args := m.Called(ctx, actor, courseID, date, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttendanceListResult), args.Error(1)
}

func (m *MockAttendanceService) History(ctx context.Context, studentCode string, limit, offset int) (*service.AttendanceListResult, error) {
	args := m.Called(ctx, studentCode, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttendanceListResult), args.Error(1)
}

func (m *MockAttendanceService) CourseStats(ctx context.Context, actor service.Actor, courseID, from, to string) (*model.CourseStats, error) {
	args := m.Called(ctx, actor, courseID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CourseStats), args.Error(1)
}

func (m *MockAttendanceService) StudentStats(ctx context.Context, studentCode string) ([]model.StudentCourseStats, error) {
	args := m.Called(ctx, studentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StudentCourseStats), args.Error(1)
}

// Export writes the optional third return value to w when it is a []byte.
func (m *MockAttendanceService) Export(ctx context.Context, actor service.Actor, courseID, from, to string, format roster.Format, w io.Writer) error {
	args := m.Called(ctx, actor, courseID, from, to, format, w)
	if b, ok := args.Get(0).([]byte); ok {
		if _, err := w.Write(b); err != nil {
			return err
		}
		return args.Error(1)
	}
	return args.Error(0)
}

func (m *MockAttendanceService) PhotoURL(ctx context.Context, actor service.Actor, attendanceID string) (string, error) {
	args := m.Called(ctx, actor, attendanceID)
	return args.String(0), args.Error(1)
}
