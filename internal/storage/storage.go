// Package storage keeps check-in photos in an S3-compatible bucket.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions describe an upload. Size is the exact byte count, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the backend reports for a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// DeleteError reports one key that could not be removed by DeleteMany.
type DeleteError struct {
	Key string
	Err error
}

// Storage is the photo bucket.
type Storage interface {
	// Put streams r into key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteMany removes keys in bulk and returns the ones that failed.
	// The error is non-nil only when the request itself could not be made.
	DeleteMany(ctx context.Context, keys []string) ([]DeleteError, error)
	// PresignGet returns a URL that downloads key without credentials until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Ping checks that the bucket is reachable.
	Ping(ctx context.Context) error
}
