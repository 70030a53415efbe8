package mdextract

import (
	"context"
	"time"
)

// DefaultPresignTTL is how long download links stay valid by default.
const DefaultPresignTTL = time.Hour

// BlobStore is a key-value object store that can hand out time-limited
// download links.
type BlobStore interface {
	// Put stores data under key in bucket. Failures are ESTORAGE errors.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error

	// PresignGet returns a URL granting read access to the object for ttl.
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
