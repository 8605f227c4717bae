// Package job runs background maintenance on a cron schedule.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"attendapi/internal/logger"
	"attendapi/internal/service"
)

// PhotoCleanup periodically purges attendance photos older than the retention period.
type PhotoCleanup struct {
	cron      *cron.Cron
	svc       service.CleanupService
	retention time.Duration
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewPhotoCleanup registers the purge under spec (standard five-field cron syntax) in loc.
func NewPhotoCleanup(svc service.CleanupService, spec string, retentionDays int, loc *time.Location, log *zap.Logger) (*PhotoCleanup, error) {
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %d days", retentionDays)
	}
	if loc == nil {
		loc = time.UTC
	}
	j := &PhotoCleanup{
		cron:      cron.New(cron.WithLocation(loc)),
		svc:       svc,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		timeout:   30 * time.Minute,
		log:       logger.Component(log, "photo_cleanup"),
		now:       time.Now,
	}
	if _, err := j.cron.AddFunc(spec, j.Run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return j, nil
}

// Run performs one purge pass.
func (j *PhotoCleanup) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := j.now()
	cutoff := start.Add(-j.retention)
	n, err := j.svc.PurgePhotos(ctx, cutoff)
	fields := []zap.Field{
		zap.String("event", "photo_cleanup"),
		zap.Time("cutoff", cutoff),
		zap.Int("purged", n),
		zap.Duration("duration_ms", time.Since(start)),
	}
	if err != nil {
		j.log.Error("photo cleanup failed", append(fields, zap.Error(err))...)
		return
	}
	j.log.Info("photo cleanup finished", fields...)
}

// Start begins the schedule in its own goroutine.
func (j *PhotoCleanup) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running purge, bounded by ctx.
func (j *PhotoCleanup) Stop(ctx context.Context) error {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
