package mdextract

import "context"

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the page and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Prober checks that a URL is reachable before it is fetched.
type Prober interface {
	// Probe returns nil if the URL answers with HTTP 200. A non-200 answer
	// and a transport failure are both EUNREACHABLE errors with distinct
	// messages.
	Probe(ctx context.Context, url string) error
}
