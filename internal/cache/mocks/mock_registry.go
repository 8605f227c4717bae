package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCodeRegistry struct {
	mock.Mock
}

func (m *MockCodeRegistry) Remember(ctx context.Context, courseID, randomCode string, ttl time.Duration) error {
	args := m.Called(ctx, courseID, randomCode, ttl)
	return args.Error(0)
}

func (m *MockCodeRegistry) Issued(ctx context.Context, courseID, randomCode string) (bool, error) {
	args := m.Called(ctx, courseID, randomCode)
	return args.Bool(0), args.Error(1)
}
