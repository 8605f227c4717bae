package mocks

import (
	"context"

	"attendapi/internal/model"
	"attendapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) Create(ctx context.Context, in service.NewCourse) (*model.Course, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) ListForTeacher(ctx context.Context, teacherCode string) ([]model.Course, error) {
	args := m.Called(ctx, teacherCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCourseService) ListForClass(ctx context.Context, classCode string) ([]model.Course, error) {
	args := m.Called(ctx, classCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCourseService) Sessions(ctx context.Context, id string) ([]model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Session), args.Error(1)
}
