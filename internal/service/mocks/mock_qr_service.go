package mocks

import (
	"context"

	"attendapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockQRService struct {
	mock.Mock
}

func (m *MockQRService) Generate(ctx context.Context, actor service.Actor, courseID string) (*service.QRCode, error) {
	args := m.Called(ctx, actor, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QRCode), args.Error(1)
}

func (m *MockQRService) PNG(ctx context.Context, actor service.Actor, courseID string) ([]byte, error) {
	args := m.Called(ctx, actor, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
