package mdextract

import "context"

// Result is the orchestrator's uniform output. Collections are never nil,
// so archive assembly has a single shape to handle. A terminal failure is
// reported as an error instead of a Result.
type Result struct {
	DoclingMarkdown    string
	MarkitdownMarkdown string

	// RawText is the text stream fed to the converters, if the strategy
	// produced one.
	RawText string

	Images []ImageRecord
	Tables []Table
	Links  []LinkRecord

	// Bundle is set for pass-through strategies; all other fields are empty.
	Bundle []byte

	Failures map[Stream]string
}

// Delivery describes a persisted archive.
type Delivery struct {
	Key         string
	DownloadURL string
	Message     string
}

// Processor runs a request end to end: extraction, conversion, archiving,
// upload and link generation.
type Processor interface {
	// Process returns the delivery for req. An empty bucket selects the
	// configured default bucket.
	Process(ctx context.Context, req *Request, bucket string) (*Delivery, error)
}
