package pipeline

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fwojciec/mdextract"
)

// DefaultBucket receives archives when a request names no bucket.
const DefaultBucket = "bigdata-project1-storage"

// KeyTimeLayout formats the timestamp embedded in object keys.
const KeyTimeLayout = "20060102_150405"

// Delivery messages per strategy.
const (
	EnterprisePDFMessage = "Data has been stored in S3. You can download the complete ZIP file using the link."
	LocalPDFMessage      = "ZIP contains two Markdown files, extracted images, and tables."
	HTMLScrapeMessage    = "ZIP contains Markdown files, extracted text, images, tables, and links metadata."
	AnalysisMessage      = "ZIP contains Markdown renditions of the page analysis report."
)

var _ mdextract.Processor = (*Service)(nil)

// Service runs requests through a Pipeline, stores the archive and returns
// a download link.
type Service struct {
	Pipeline *Pipeline
	Store    mdextract.BlobStore

	// DefaultBucket is used when Process is given no bucket.
	DefaultBucket string

	// PresignTTL is the lifetime of download links. Zero uses
	// mdextract.DefaultPresignTTL.
	PresignTTL time.Duration

	// Now is the clock for object keys. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Process implements mdextract.Processor.
func (s *Service) Process(ctx context.Context, req *mdextract.Request, bucket string) (*mdextract.Delivery, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		bucket = s.defaultBucket()
	}

	ts := s.now().UTC().Format(KeyTimeLayout)
	strategy := req.Strategy()

	if strategy == mdextract.StrategyRemotePDF {
		key := "pdf/" + ts + "_" + baseName(req.Filename)
		if err := s.Store.Put(ctx, bucket, key, req.PDF, "application/pdf"); err != nil {
			return nil, err
		}
	}

	res, err := s.Pipeline.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	for stream, reason := range res.Failures {
		s.logger().Warn("partial extraction", "strategy", strategy, "stream", stream, "reason", reason)
	}

	archive, err := mdextract.BuildArchive(res)
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	data, err := archive.Bytes()
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}

	key := ArchiveKey(strategy, ts, req.Filename)
	if err := s.Store.Put(ctx, bucket, key, data, mdextract.ArchiveContentType); err != nil {
		return nil, err
	}

	url, err := s.Store.PresignGet(ctx, bucket, key, s.presignTTL())
	if err != nil {
		return nil, err
	}

	return &mdextract.Delivery{
		Key:         key,
		DownloadURL: url,
		Message:     Message(strategy),
	}, nil
}

// ArchiveKey returns the object key of the archive for a strategy run
// started at ts.
func ArchiveKey(strategy mdextract.Strategy, ts, filename string) string {
	switch strategy {
	case mdextract.StrategyRemotePDF:
		return "pdf/enterprise/" + stem(filename) + "/extracted_data.zip"
	case mdextract.StrategyLocalPDF:
		return "pdf/opensource/" + ts + "_" + baseName(filename) + "_result.zip"
	case mdextract.StrategyRemoteAnalysis:
		return "diffbot/" + ts + "_result.zip"
	default:
		return "web_scraper/" + ts + "_result.zip"
	}
}

// Message returns the delivery message for a strategy.
func Message(strategy mdextract.Strategy) string {
	switch strategy {
	case mdextract.StrategyRemotePDF:
		return EnterprisePDFMessage
	case mdextract.StrategyLocalPDF:
		return LocalPDFMessage
	case mdextract.StrategyRemoteAnalysis:
		return AnalysisMessage
	default:
		return HTMLScrapeMessage
	}
}

// baseName strips any directory part a client sent with the file name.
func baseName(filename string) string {
	return path.Base(strings.ReplaceAll(filename, `\`, "/"))
}

func stem(filename string) string {
	base := baseName(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (s *Service) defaultBucket() string {
	if s.DefaultBucket == "" {
		return DefaultBucket
	}
	return s.DefaultBucket
}

func (s *Service) presignTTL() time.Duration {
	if s.PresignTTL <= 0 {
		return mdextract.DefaultPresignTTL
	}
	return s.PresignTTL
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
