package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/mdextract"
)

// DefaultProbeTimeout bounds the reachability check.
const DefaultProbeTimeout = 5 * time.Second

// Ensure Prober implements mdextract.Prober at compile time.
var _ mdextract.Prober = (*Prober)(nil)

// Prober checks reachability with a HEAD request. Redirects are followed;
// only the final status counts.
type Prober struct {
	client *http.Client
}

// NewProber creates a Prober with the given timeout. A zero timeout uses
// DefaultProbeTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{client: &http.Client{Timeout: timeout}}
}

// Probe issues a HEAD request and requires a 200 answer.
func (p *Prober) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return mdextract.Errorf(mdextract.EINVALID, "Invalid URL: %v", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return mdextract.Errorf(mdextract.EUNREACHABLE, "URL is not accessible: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mdextract.Errorf(mdextract.EUNREACHABLE, "URL returned status code: %d", resp.StatusCode)
	}
	return nil
}
