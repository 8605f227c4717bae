// Package cache keeps short-lived state shared between API instances.
package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const issuedKeyPrefix = "qr:issued:"

var issuedLookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "attendapi_qr_issued_lookup_duration_ms",
	Help:    "Latency of issued QR code lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// CodeRegistry records which QR random codes were actually handed out, so a
// hand-crafted payload with a fresh timestamp is still refused.
type CodeRegistry interface {
	Remember(ctx context.Context, courseID, randomCode string, ttl time.Duration) error
	Issued(ctx context.Context, courseID, randomCode string) (bool, error)
}

// RedisCodeRegistry is the Redis-backed CodeRegistry.
type RedisCodeRegistry struct {
	client *redis.Client
}

// NewRedisCodeRegistry wraps an existing client. The client lifecycle is managed by the caller.
func NewRedisCodeRegistry(client *redis.Client) *RedisCodeRegistry {
	return &RedisCodeRegistry{client: client}
}

var _ CodeRegistry = (*RedisCodeRegistry)(nil)

func issuedKey(courseID, randomCode string) string {
	return issuedKeyPrefix + courseID + ":" + randomCode
}

// Remember stores the code with SET EX so it disappears together with the QR window.
func (r *RedisCodeRegistry) Remember(ctx context.Context, courseID, randomCode string, ttl time.Duration) error {
	return r.client.Set(ctx, issuedKey(courseID, randomCode), "1", ttl).Err()
}

// Issued reports whether the code is still known.
func (r *RedisCodeRegistry) Issued(ctx context.Context, courseID, randomCode string) (bool, error) {
	start := time.Now()
	defer func() {
		issuedLookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	n, err := r.client.Exists(ctx, issuedKey(courseID, randomCode)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
