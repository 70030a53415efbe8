// Package pipeline orchestrates extraction, conversion and delivery.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/mdextract"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Converter names used in conversion failure markers.
const (
	DoclingName    = "Docling"
	MarkitdownName = "Markitdown"
)

// Pipeline runs one request through its strategy and both converters.
type Pipeline struct {
	Extractors map[mdextract.Strategy]mdextract.Extractor
	Docling    mdextract.Converter
	Markitdown mdextract.Converter
	Logger     *slog.Logger

	local *semaphore.Weighted
}

// New returns a Pipeline. maxLocalJobs bounds how many in-process
// strategies run at once; zero means unbounded.
func New(extractors map[mdextract.Strategy]mdextract.Extractor, docling, markitdown mdextract.Converter, maxLocalJobs int, logger *slog.Logger) *Pipeline {
	p := &Pipeline{
		Extractors: extractors,
		Docling:    docling,
		Markitdown: markitdown,
		Logger:     logger,
	}
	if maxLocalJobs > 0 {
		p.local = semaphore.NewWeighted(int64(maxLocalJobs))
	}
	return p
}

// Run extracts req with the strategy its kind and backend select and
// converts the extracted text with both converters. Converter failures are
// not terminal: the failed rendition holds a failure marker instead.
func (p *Pipeline) Run(ctx context.Context, req *mdextract.Request) (*mdextract.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	strategy := req.Strategy()
	ex, ok := p.Extractors[strategy]
	if !ok || ex == nil {
		return nil, mdextract.Errorf(mdextract.EINTERNAL, "no extractor for strategy %s", strategy)
	}

	if strategy.Local() && p.local != nil {
		if err := p.local.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.local.Release(1)
	}

	ext, err := ex.Extract(ctx, req)
	if err != nil {
		return nil, err
	}

	return p.assemble(ext), nil
}

func (p *Pipeline) assemble(ext *mdextract.Extraction) *mdextract.Result {
	res := &mdextract.Result{
		RawText:  ext.Text,
		Images:   nonNil(ext.Images),
		Tables:   nonNil(ext.Tables),
		Links:    nonNil(ext.Links),
		Failures: make(map[mdextract.Stream]string, len(ext.Failures)),
	}
	for s, reason := range ext.Failures {
		res.Failures[s] = reason
	}

	if ext.Bundle != nil {
		res.Bundle = ext.Bundle
		return res
	}

	input := ext.Text
	if input == "" {
		input = ext.Report
	}

	var g errgroup.Group
	g.Go(func() error {
		res.DoclingMarkdown = p.convert(DoclingName, p.Docling, input)
		return nil
	})
	g.Go(func() error {
		res.MarkitdownMarkdown = p.convert(MarkitdownName, p.Markitdown, input)
		return nil
	})
	_ = g.Wait()

	return res
}

// convert returns the markdown or, on failure, the failure marker.
func (p *Pipeline) convert(name string, c mdextract.Converter, input string) (md string) {
	defer func() {
		if r := recover(); r != nil {
			md = failureMarker(name, fmt.Errorf("panic: %v", r))
			p.logger().Error("converter panicked", "converter", name, "panic", r)
		}
	}()

	if c == nil {
		return failureMarker(name, mdextract.Errorf(mdextract.ECONFIG, "converter not configured"))
	}
	md, err := c.Convert(input)
	if err != nil {
		p.logger().Warn("conversion failed", "converter", name, "err", err)
		return failureMarker(name, err)
	}
	return md
}

func failureMarker(name string, err error) string {
	return fmt.Sprintf("%s conversion failed: %s", name, err.Error())
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
