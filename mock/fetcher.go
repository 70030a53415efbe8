package mock

import (
	"context"

	"github.com/fwojciec/mdextract"
)

var _ mdextract.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of mdextract.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ mdextract.Prober = (*Prober)(nil)

// Prober is a mock implementation of mdextract.Prober.
type Prober struct {
	ProbeFn func(ctx context.Context, url string) error
}

func (p *Prober) Probe(ctx context.Context, url string) error {
	return p.ProbeFn(ctx, url)
}
