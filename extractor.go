package mdextract

import "context"

// Extractor is one extraction strategy. Implementations turn a request into
// content streams, or fail with a terminal error.
type Extractor interface {
	// Extract runs the strategy. A returned error aborts the request; partial
	// stream failures are recorded in Extraction.Failures instead.
	Extract(ctx context.Context, req *Request) (*Extraction, error)
}
