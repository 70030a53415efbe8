package goquery

import (
	"context"
	"log/slog"

	"github.com/fwojciec/mdextract"
)

var _ mdextract.Extractor = (*Scraper)(nil)

// Scraper implements the HTML scrape strategy: validate, probe, fetch,
// then extract every stream from a single parse.
type Scraper struct {
	Prober  mdextract.Prober
	Fetcher mdextract.Fetcher
	Logger  *slog.Logger

	// Streams overrides the stream extractors. The zero value uses
	// DefaultStreams.
	Streams Streams
}

// Extract implements mdextract.Extractor for web requests.
func (s *Scraper) Extract(ctx context.Context, req *mdextract.Request) (*mdextract.Extraction, error) {
	u, err := mdextract.ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	if err := s.Prober.Probe(ctx, u.String()); err != nil {
		return nil, err
	}

	html, err := s.Fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, mdextract.Errorf(mdextract.EUNREACHABLE, "Failed to parse URL: %v", err)
	}

	return s.streams().Extract(html, u, s.Logger)
}

func (s *Scraper) streams() Streams {
	d := DefaultStreams()
	if s.Streams.Text != nil {
		d.Text = s.Streams.Text
	}
	if s.Streams.Images != nil {
		d.Images = s.Streams.Images
	}
	if s.Streams.Links != nil {
		d.Links = s.Streams.Links
	}
	if s.Streams.Tables != nil {
		d.Tables = s.Streams.Tables
	}
	return d
}
