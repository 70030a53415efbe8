package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mdextract"
)

// Ensure LoggingBlobStore implements mdextract.BlobStore.
var _ mdextract.BlobStore = (*LoggingBlobStore)(nil)

// LoggingBlobStore wraps a BlobStore with logging of uploads and links.
type LoggingBlobStore struct {
	next   mdextract.BlobStore
	logger *slog.Logger
}

// NewLoggingBlobStore creates a new LoggingBlobStore.
func NewLoggingBlobStore(next mdextract.BlobStore, logger *slog.Logger) *LoggingBlobStore {
	return &LoggingBlobStore{next: next, logger: logger}
}

// Put delegates to the wrapped store.
func (s *LoggingBlobStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("blob put",
			"bucket", bucket,
			"key", key,
			"bytes", len(data),
			"content_type", contentType,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Put(ctx, bucket, key, data, contentType)
}

// PresignGet delegates to the wrapped store. The link itself is not
// logged since it grants access.
func (s *LoggingBlobStore) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (url string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("blob presign",
			"bucket", bucket,
			"key", key,
			"ttl", ttl,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.PresignGet(ctx, bucket, key, ttl)
}
