package mocks

import (
	"context"

	"attendapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockClassService struct {
	mock.Mock
}

func (m *MockClassService) Create(ctx context.Context, code, name string) (*model.Class, error) {
	args := m.Called(ctx, code, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Class), args.Error(1)
}

func (m *MockClassService) List(ctx context.Context) ([]model.Class, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Class), args.Error(1)
}

func (m *MockClassService) Get(ctx context.Context, code string) (*model.Class, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Class), args.Error(1)
}

func (m *MockClassService) RegenerateVerificationCode(ctx context.Context, code string) (*model.Class, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Class), args.Error(1)
}

func (m *MockClassService) Bind(ctx context.Context, studentID, classCode, verificationCode string) (*model.User, error) {
	args := m.Called(ctx, studentID, classCode, verificationCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockClassService) ListStudents(ctx context.Context, classCode string) ([]model.User, error) {
	args := m.Called(ctx, classCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}
