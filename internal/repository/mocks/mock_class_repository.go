package mocks

import (
	"context"

	"attendapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockClassRepository struct {
	mock.Mock
}

func (m *MockClassRepository) Create(ctx context.Context, c *model.Class) (*model.Class, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Class), args.Error(1)
}

func (m *MockClassRepository) FindByCode(ctx context.Context, code string) (*model.Class, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Class), args.Error(1)
}

func (m *MockClassRepository) List(ctx context.Context) ([]model.Class, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Class), args.Error(1)
}

func (m *MockClassRepository) UpdateVerificationCode(ctx context.Context, code, verificationCode string) error {
	args := m.Called(ctx, code, verificationCode)
	return args.Error(0)
}
