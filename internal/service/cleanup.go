package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"attendapi/internal/logger"
	"attendapi/internal/repository"
	"attendapi/internal/storage"
)

const purgeBatchSize = 100

// CleanupService removes attendance photos past their retention.
type CleanupService interface {
	// PurgePhotos deletes photos of records checked in before olderThan and returns how many were removed.
	PurgePhotos(ctx context.Context, olderThan time.Time) (int, error)
}

type cleanupService struct {
	attendances repository.AttendanceRepository
	store       storage.Storage
	log         *zap.Logger
}

// NewCleanupService constructs a new CleanupService.
func NewCleanupService(attendances repository.AttendanceRepository, store storage.Storage, log *zap.Logger) CleanupService {
	return &cleanupService{attendances: attendances, store: store, log: logger.Component(log, "cleanup")}
}

func (s *cleanupService) PurgePhotos(ctx context.Context, olderThan time.Time) (int, error) {
	purged := 0
	for {
		batch, err := s.attendances.ListWithPhotoBefore(ctx, olderThan, purgeBatchSize)
		if err != nil {
			return purged, fmt.Errorf("list photos: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		keys := make([]string, len(batch))
		for i, a := range batch {
			keys[i] = a.PhotoKey
		}
		failed, err := s.store.DeleteMany(ctx, keys)
		if err != nil {
			return purged, fmt.Errorf("delete storage: %w", err)
		}
		skip := make(map[string]bool, len(failed))
		for _, f := range failed {
			skip[f.Key] = true
			s.log.Warn("photo delete failed",
				zap.String("event", "photo_purge"),
				zap.String("key", f.Key),
				zap.Error(f.Err),
			)
		}

		// Rows keep their key until the object is gone, so failures are retried next run.
		for _, a := range batch {
			if skip[a.PhotoKey] {
				continue
			}
			if err := s.attendances.ClearPhoto(ctx, a.ID); err != nil {
				return purged, fmt.Errorf("clear photo %s: %w", a.ID, err)
			}
			purged++
		}

		// Failed rows would be listed again; stop instead of spinning on them.
		if len(failed) > 0 {
			s.logDone(olderThan, purged, len(failed))
			return purged, fmt.Errorf("delete storage: %d objects not removed", len(failed))
		}
		if len(batch) < purgeBatchSize {
			break
		}
	}
	s.logDone(olderThan, purged, 0)
	return purged, nil
}

func (s *cleanupService) logDone(olderThan time.Time, purged, failed int) {
	s.log.Info("photos purged",
		zap.String("event", "photo_purge"),
		zap.Time("older_than", olderThan),
		zap.Int("count", purged),
		zap.Int("failed", failed),
	)
}
