package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/adobe"
	"github.com/fwojciec/mdextract/diffbot"
	mdfs "github.com/fwojciec/mdextract/fs"
	"github.com/fwojciec/mdextract/goldmark"
	"github.com/fwojciec/mdextract/goquery"
	"github.com/fwojciec/mdextract/htmltomarkdown"
	mdhttp "github.com/fwojciec/mdextract/http"
	"github.com/fwojciec/mdextract/pdf"
	"github.com/fwojciec/mdextract/pipeline"
	"github.com/fwojciec/mdextract/rod"
	"github.com/fwojciec/mdextract/s3"
	mdslog "github.com/fwojciec/mdextract/slog"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Store overrides the blob store built from flags. Used in tests.
	Store mdextract.BlobStore

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close releases resources opened by Run.
func (m *Main) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("mdextract"),
		kong.Description("Extract PDFs and web pages into Markdown archives"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'mdextract --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.LogFormat, cli.LogLevel)

	processor, err := m.wire(ctx, cli, deps.Logger)
	if err != nil {
		return err
	}
	defer m.Close()
	deps.Processor = processor

	return kongCtx.Run(deps)
}

// wire builds the processing service from flags.
func (m *Main) wire(ctx context.Context, cli *CLI, logger *slog.Logger) (*pipeline.Service, error) {
	fetcher, err := m.fetcher(cli)
	if err != nil {
		return nil, err
	}
	fetcher = mdslog.NewLoggingFetcher(fetcher, logger)

	scraper := &goquery.Scraper{
		Prober:  mdhttp.NewProber(0),
		Fetcher: fetcher,
		Logger:  logger,
	}

	local := pdf.NewExtractor(logger)

	enterprise := adobe.NewClient(cli.Adobe.ClientID, cli.Adobe.ClientSecret)
	if cli.Adobe.BaseURL != "" {
		enterprise.BaseURL = cli.Adobe.BaseURL
	}
	enterprise.PollTimeout = cli.Adobe.PollTimeout
	enterprise.Logger = logger

	analysis := diffbot.NewClient(cli.Diffbot.Token, cli.Diffbot.RPS)
	analysis.Logger = logger

	extractors := map[mdextract.Strategy]mdextract.Extractor{
		mdextract.StrategyLocalPDF:       local,
		mdextract.StrategyRemotePDF:      enterprise,
		mdextract.StrategyHTMLScrape:     scraper,
		mdextract.StrategyRemoteAnalysis: analysis,
	}
	for s, ex := range extractors {
		extractors[s] = mdslog.NewLoggingExtractor(ex, logger)
	}

	docling := mdslog.NewLoggingConverter(pipeline.DoclingName, htmltomarkdown.NewTextConverter(), logger)
	markitdown := mdslog.NewLoggingConverter(pipeline.MarkitdownName, goldmark.NewConverter(htmltomarkdown.NewConverter()), logger)

	store, err := m.store(ctx, cli)
	if err != nil {
		return nil, err
	}

	return &pipeline.Service{
		Pipeline:      pipeline.New(extractors, docling, markitdown, cli.MaxLocalJobs, logger),
		Store:         mdslog.NewLoggingBlobStore(store, logger),
		DefaultBucket: cli.Bucket,
		PresignTTL:    cli.PresignTTL,
		Logger:        logger,
	}, nil
}

func (m *Main) fetcher(cli *CLI) (mdextract.Fetcher, error) {
	if !cli.Render {
		return mdhttp.NewFetcher(mdhttp.WithTimeout(cli.FetchTimeout)), nil
	}
	f, err := rod.NewFetcher(rod.WithFetchTimeout(cli.FetchTimeout), rod.WithUserAgent(mdhttp.DefaultUserAgent))
	if err != nil {
		return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
	}
	m.closers = append(m.closers, f)
	return f, nil
}

func (m *Main) store(ctx context.Context, cli *CLI) (mdextract.BlobStore, error) {
	if m.Store != nil {
		return m.Store, nil
	}
	if out := cli.outDir(); out != "" {
		return mdfs.NewStore(out), nil
	}
	store, err := s3.Open(ctx, s3.Config{
		Region:   cli.S3.Region,
		Endpoint: cli.S3.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure S3: %w", err)
	}
	return store, nil
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
