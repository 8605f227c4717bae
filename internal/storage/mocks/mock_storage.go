package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"attendapi/internal/storage"
)

// MockStorage is a testify mock of storage.Storage. Put may return a
// func(ctx, key, r, opt) storage.ObjectInfo to echo the generated key.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, key, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) DeleteMany(ctx context.Context, keys []string) ([]storage.DeleteError, error) {
	args := m.Called(ctx, keys)
	failed, _ := args.Get(0).([]storage.DeleteError)
	return failed, args.Error(1)
}

func (m *MockStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
