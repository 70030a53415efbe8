package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/mdextract"
)

// Ensure Store implements mdextract.BlobStore at compile time.
var _ mdextract.BlobStore = (*Store)(nil)

// Store implements mdextract.BlobStore on a local directory. Buckets are
// subdirectories of the base directory and keys are relative paths inside
// them. Objects are written to a temporary file first and renamed into
// place, so readers never see partial content.
type Store struct {
	baseDir string
}

// NewStore creates a new Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) objectPath(bucket, key string) (string, error) {
	if bucket == "" || !filepath.IsLocal(bucket) {
		return "", mdextract.Errorf(mdextract.EINVALID, "invalid bucket %q", bucket)
	}
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", mdextract.Errorf(mdextract.EINVALID, "invalid key %q", key)
	}
	return filepath.Join(s.baseDir, bucket, filepath.FromSlash(key)), nil
}

// Put writes data to the object path.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return mdextract.Errorf(mdextract.ESTORAGE, "Failed to upload: %v", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return mdextract.Errorf(mdextract.ESTORAGE, "Failed to upload: %v", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return mdextract.Errorf(mdextract.ESTORAGE, "Failed to upload: %v", err)
	}
	return nil
}

// PresignGet returns a file:// URL for the object. Local links do not
// expire, so ttl is ignored.
func (s *Store) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", mdextract.Errorf(mdextract.ENOTFOUND, "object %q not found", key)
		}
		return "", mdextract.Errorf(mdextract.ESTORAGE, "Failed to generate presigned URL: %v", err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", mdextract.Errorf(mdextract.ESTORAGE, "Failed to generate presigned URL: %v", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
