package mock

import (
	"context"

	"github.com/fwojciec/mdextract"
)

var _ mdextract.Processor = (*Processor)(nil)

// Processor is a mock implementation of mdextract.Processor.
type Processor struct {
	ProcessFn func(ctx context.Context, req *mdextract.Request, bucket string) (*mdextract.Delivery, error)
}

func (p *Processor) Process(ctx context.Context, req *mdextract.Request, bucket string) (*mdextract.Delivery, error) {
	return p.ProcessFn(ctx, req, bucket)
}
