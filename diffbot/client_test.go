package diffbot_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/diffbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func newClient(t *testing.T, handler http.HandlerFunc) (*diffbot.Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := diffbot.NewClient("tok", 1000)
	c.BaseURL = srv.URL
	c.Now = func() time.Time { return fixedTime }
	return c, &calls
}

func webRequest(url string) *mdextract.Request {
	return mdextract.NewWebRequest(url, mdextract.BackendEnterprise)
}

func TestClient_Extract(t *testing.T) {
	t.Parallel()

	t.Run("renders the analysis as a report", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotToken, gotURL string
		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotToken = r.URL.Query().Get("token")
			gotURL = r.URL.Query().Get("url")
			io.WriteString(w, `{"type":"article","objects":[{"title":"Hello"}]}`)
		})

		ext, err := c.Extract(context.Background(), webRequest("https://example.com/post"))

		require.NoError(t, err)
		assert.Equal(t, "/v3/analyze", gotPath)
		assert.Equal(t, "tok", gotToken)
		assert.Equal(t, "https://example.com/post", gotURL)
		assert.Contains(t, ext.Report, "# Scraped Data Report\n\n## Source URL\nhttps://example.com/post\n\n## Timestamp\n2025-02-03 04:05:06\n\n## Extracted Content\n```\n{")
		assert.Contains(t, ext.Report, `"Hello"`)
		assert.True(t, strings.HasSuffix(ext.Report, "\n```\n"))
		assert.Empty(t, ext.Text)
	})

	t.Run("missing token fails before any request", func(t *testing.T) {
		t.Parallel()

		c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {})
		c.Token = ""

		_, err := c.Extract(context.Background(), webRequest("https://example.com"))

		require.Error(t, err)
		assert.Equal(t, mdextract.ECONFIG, mdextract.ErrorCode(err))
		assert.Zero(t, calls.Load())
	})

	t.Run("invalid URL fails before any request", func(t *testing.T) {
		t.Parallel()

		c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := c.Extract(context.Background(), webRequest("ftp://example.com"))

		require.Error(t, err)
		assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))
		assert.Zero(t, calls.Load())
	})

	t.Run("error field is a backend error", func(t *testing.T) {
		t.Parallel()

		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"errorCode":401,"error":"Not authorized API token."}`)
		})

		_, err := c.Extract(context.Background(), webRequest("https://example.com"))

		require.Error(t, err)
		assert.Equal(t, mdextract.EBACKEND, mdextract.ErrorCode(err))
		assert.Equal(t, "Diffbot error: Not authorized API token.", mdextract.ErrorMessage(err))
	})

	t.Run("non-2xx without body is a backend error", func(t *testing.T) {
		t.Parallel()

		c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Extract(context.Background(), webRequest("https://example.com"))

		require.Error(t, err)
		assert.Equal(t, mdextract.EBACKEND, mdextract.ErrorCode(err))
		assert.Contains(t, mdextract.ErrorMessage(err), "502")
	})
}

func TestReport(t *testing.T) {
	t.Parallel()

	got := diffbot.Report("https://a.com", fixedTime, []byte(`{"a":1}`))

	assert.Equal(t, "# Scraped Data Report\n\n## Source URL\nhttps://a.com\n\n## Timestamp\n2025-02-03 04:05:06\n\n## Extracted Content\n```\n{\n  \"a\": 1\n}\n```\n", got)
}
