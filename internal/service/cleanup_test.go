package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendapi/internal/model"
	repoMocks "attendapi/internal/repository/mocks"
	"attendapi/internal/storage"
	storeMocks "attendapi/internal/storage/mocks"
)

func TestCleanupService_PurgePhotos(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	t.Run("drains batches", func(t *testing.T) {
		mAtt := new(repoMocks.MockAttendanceRepository)
		mStore := new(storeMocks.MockStorage)
		svc := NewCleanupService(mAtt, mStore, zap.NewNop())

		full := make([]model.Attendance, purgeBatchSize)
		for i := range full {
			full[i] = model.Attendance{ID: fmt.Sprintf("a-%d", i), PhotoKey: fmt.Sprintf("photos/%d.jpg", i)}
		}
		mAtt.On("ListWithPhotoBefore", ctx, cutoff, purgeBatchSize).Return(full, nil).Once()
		mAtt.On("ListWithPhotoBefore", ctx, cutoff, purgeBatchSize).
			Return([]model.Attendance{{ID: "last", PhotoKey: "photos/last.jpg"}}, nil).Once()
		mStore.On("DeleteMany", ctx, mock.MatchedBy(func(keys []string) bool { return len(keys) == purgeBatchSize })).
			Return(nil, nil).Once()
		mStore.On("DeleteMany", ctx, []string{"photos/last.jpg"}).Return(nil, nil).Once()
		mAtt.On("ClearPhoto", ctx, mock.AnythingOfType("string")).Return(nil)

		n, err := svc.PurgePhotos(ctx, cutoff)

		require.NoError(t, err)
		assert.Equal(t, purgeBatchSize+1, n)
		mAtt.AssertNumberOfCalls(t, "ClearPhoto", purgeBatchSize+1)
		mStore.AssertExpectations(t)
		mAtt.AssertExpectations(t)
	})

	t.Run("failed objects keep their rows", func(t *testing.T) {
		mAtt := new(repoMocks.MockAttendanceRepository)
		mStore := new(storeMocks.MockStorage)
		svc := NewCleanupService(mAtt, mStore, zap.NewNop())

		mAtt.On("ListWithPhotoBefore", ctx, cutoff, purgeBatchSize).
			Return([]model.Attendance{{ID: "a-1", PhotoKey: "photos/1.jpg"}, {ID: "a-2", PhotoKey: "photos/2.jpg"}}, nil).Once()
		mStore.On("DeleteMany", ctx, []string{"photos/1.jpg", "photos/2.jpg"}).
			Return([]storage.DeleteError{{Key: "photos/2.jpg", Err: errors.New("AccessDenied")}}, nil)
		mAtt.On("ClearPhoto", ctx, "a-1").Return(nil).Once()

		n, err := svc.PurgePhotos(ctx, cutoff)

		assert.ErrorContains(t, err, "1 objects not removed")
		assert.Equal(t, 1, n)
		mAtt.AssertNotCalled(t, "ClearPhoto", ctx, "a-2")
		mAtt.AssertExpectations(t)
	})

	t.Run("storage unreachable", func(t *testing.T) {
		mAtt := new(repoMocks.MockAttendanceRepository)
		mStore := new(storeMocks.MockStorage)
		svc := NewCleanupService(mAtt, mStore, zap.NewNop())

		mAtt.On("ListWithPhotoBefore", ctx, cutoff, purgeBatchSize).
			Return([]model.Attendance{{ID: "a-1", PhotoKey: "photos/1.jpg"}}, nil)
		mStore.On("DeleteMany", ctx, []string{"photos/1.jpg"}).Return(nil, errors.New("s3 down"))

		n, err := svc.PurgePhotos(ctx, cutoff)

		assert.ErrorContains(t, err, "delete storage: s3 down")
		assert.Equal(t, 0, n)
		mAtt.AssertNotCalled(t, "ClearPhoto", mock.Anything, mock.Anything)
	})

	t.Run("nothing to do", func(t *testing.T) {
		mAtt := new(repoMocks.MockAttendanceRepository)
		svc := NewCleanupService(mAtt, new(storeMocks.MockStorage), zap.NewNop())
		mAtt.On("ListWithPhotoBefore", ctx, cutoff, purgeBatchSize).Return([]model.Attendance{}, nil)

		n, err := svc.PurgePhotos(ctx, cutoff)

		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
