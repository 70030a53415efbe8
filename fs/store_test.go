package fs_test

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Local Blob Storage
// Archives produced by local runs are stored in a directory tree

func TestStore_PutWritesObject(t *testing.T) {
	t.Parallel()

	// Given a store
	base := t.TempDir()
	store := fs.NewStore(base)

	// When I put an object
	err := store.Put(context.Background(), "bucket", "web_scraper/20250101_120000_result.zip", []byte("zip"), mdextract.ArchiveContentType)

	// Then it is written under bucket/key with no temp file left behind
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(base, "bucket", "web_scraper", "20250101_120000_result.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))
	_, err = os.Stat(filepath.Join(base, "bucket", "web_scraper", "20250101_120000_result.zip.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_PresignGetReturnsFileURL(t *testing.T) {
	t.Parallel()

	// Given a stored object
	base := t.TempDir()
	store := fs.NewStore(base)
	require.NoError(t, store.Put(context.Background(), "bucket", "a/b.zip", []byte("zip"), mdextract.ArchiveContentType))

	// When I presign it
	link, err := store.PresignGet(context.Background(), "bucket", "a/b.zip", time.Hour)

	// Then the link points at the file
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)
	data, err := os.ReadFile(filepath.FromSlash(u.Path))
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))
}

func TestStore_PresignGetMissingObject(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())

	_, err := store.PresignGet(context.Background(), "bucket", "missing.zip", time.Hour)
	assert.Equal(t, mdextract.ENOTFOUND, mdextract.ErrorCode(err))
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir())

	err := store.Put(context.Background(), "bucket", "../../etc/passwd", []byte("x"), "text/plain")
	assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))

	err = store.Put(context.Background(), "", "a.zip", []byte("x"), "text/plain")
	assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))
}
