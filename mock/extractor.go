package mock

import (
	"context"

	"github.com/fwojciec/mdextract"
)

var _ mdextract.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of mdextract.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, req *mdextract.Request) (*mdextract.Extraction, error)
}

func (e *Extractor) Extract(ctx context.Context, req *mdextract.Request) (*mdextract.Extraction, error) {
	return e.ExtractFn(ctx, req)
}
