package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mdextract"
)

// Ensure LoggingExtractor implements mdextract.Extractor.
var _ mdextract.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging of every strategy run.
type LoggingExtractor struct {
	next   mdextract.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next mdextract.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs what it produced.
func (e *LoggingExtractor) Extract(ctx context.Context, req *mdextract.Request) (ext *mdextract.Extraction, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"strategy", req.Strategy(),
			"duration", time.Since(begin),
			"err", err,
		}
		if ext != nil {
			attrs = append(attrs,
				"text_bytes", len(ext.Text),
				"images", len(ext.Images),
				"tables", len(ext.Tables),
				"links", len(ext.Links),
				"bundle_bytes", len(ext.Bundle),
				"partial", len(ext.Failures),
			)
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, req)
}
