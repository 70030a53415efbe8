package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/mdextract"
)

// Ensure LoggingConverter implements mdextract.Converter.
var _ mdextract.Converter = (*LoggingConverter)(nil)

// LoggingConverter wraps a Converter with debug logging.
type LoggingConverter struct {
	name   string
	next   mdextract.Converter
	logger *slog.Logger
}

// NewLoggingConverter creates a new LoggingConverter. name identifies the
// rendition in log records.
func NewLoggingConverter(name string, next mdextract.Converter, logger *slog.Logger) *LoggingConverter {
	return &LoggingConverter{name: name, next: next, logger: logger}
}

// Convert delegates to the wrapped converter.
func (c *LoggingConverter) Convert(text string) (md string, err error) {
	defer func(begin time.Time) {
		c.logger.Debug("convert",
			"converter", c.name,
			"in_bytes", len(text),
			"out_bytes", len(md),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Convert(text)
}
