package mock

import (
	"context"
	"time"

	"github.com/fwojciec/mdextract"
)

var _ mdextract.BlobStore = (*BlobStore)(nil)

// BlobStore is a mock implementation of mdextract.BlobStore.
type BlobStore struct {
	PutFn        func(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PresignGetFn func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

func (s *BlobStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	return s.PutFn(ctx, bucket, key, data, contentType)
}

func (s *BlobStore) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return s.PresignGetFn(ctx, bucket, key, ttl)
}
