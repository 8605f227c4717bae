package mocks

import (
	"context"
	"io"
	"time"

	"attendapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockRosterService struct {
	mock.Mock
}

func (m *MockRosterService) Import(ctx context.Context, r io.Reader) (*service.ImportReport, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportReport), args.Error(1)
}

type MockCleanupService struct {
	mock.Mock
}

func (m *MockCleanupService) PurgePhotos(ctx context.Context, olderThan time.Time) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}
