package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/mdextract"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Processor mdextract.Processor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogFormat string `enum:"text,json" default:"text" env:"MDEXTRACT_LOG_FORMAT" help:"Log format (text or json)"`
	LogLevel  string `enum:"debug,info,warn,error" default:"info" env:"MDEXTRACT_LOG_LEVEL" help:"Minimum log level"`

	Bucket       string        `default:"bigdata-project1-storage" env:"MDEXTRACT_BUCKET" help:"Default bucket for archives"`
	PresignTTL   time.Duration `default:"1h" env:"MDEXTRACT_PRESIGN_TTL" help:"Lifetime of download links"`
	Render       bool          `env:"MDEXTRACT_RENDER" help:"Render pages in headless Chrome before scraping"`
	FetchTimeout time.Duration `default:"30s" env:"MDEXTRACT_FETCH_TIMEOUT" help:"Page fetch timeout"`
	MaxLocalJobs int           `default:"4" env:"MDEXTRACT_MAX_LOCAL_JOBS" help:"Concurrent in-process extractions (0 for unbounded)"`

	S3      S3Flags      `embed:"" prefix:"s3-"`
	Adobe   AdobeFlags   `embed:"" prefix:"adobe-"`
	Diffbot DiffbotFlags `embed:"" prefix:"diffbot-"`

	Serve  ServeCmd  `cmd:"" help:"Run the HTTP server"`
	PDF    PDFCmd    `cmd:"" name:"pdf" help:"Extract a local PDF file"`
	Scrape ScrapeCmd `cmd:"" help:"Extract a web page"`
}

// S3Flags configure the object store.
type S3Flags struct {
	Endpoint string `env:"MDEXTRACT_S3_ENDPOINT" help:"S3-compatible endpoint such as MinIO"`
	Region   string `env:"AWS_REGION" help:"AWS region"`
}

// AdobeFlags configure the enterprise PDF service.
type AdobeFlags struct {
	ClientID     string        `env:"PDF_SERVICES_CLIENT_ID" help:"PDF Services client ID"`
	ClientSecret string        `env:"PDF_SERVICES_CLIENT_SECRET" help:"PDF Services client secret"`
	BaseURL      string        `env:"ADOBE_BASE_URL" help:"PDF Services base URL"`
	PollTimeout  time.Duration `default:"5m" env:"MDEXTRACT_POLL_TIMEOUT" help:"Maximum wait for a PDF Services job"`
}

// DiffbotFlags configure the page analysis service.
type DiffbotFlags struct {
	Token string  `env:"DIFFBOT_TOKEN" help:"Diffbot API token"`
	RPS   float64 `default:"1" env:"DIFFBOT_RPS" help:"Diffbot requests per second"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr           string   `default:":8000" env:"MDEXTRACT_ADDR" help:"Listen address"`
	MaxUpload      int64    `default:"52428800" env:"MDEXTRACT_MAX_UPLOAD" help:"Maximum upload size in bytes"`
	AllowedOrigins []string `env:"MDEXTRACT_CORS_ORIGINS" help:"Allowed CORS origins (default all)"`
}

// PDFCmd is the "pdf" subcommand.
type PDFCmd struct {
	File    string `arg:"" type:"existingfile" help:"PDF file to extract"`
	Backend string `enum:"opensource,enterprise" default:"opensource" help:"Extraction backend"`
	Out     string `type:"path" help:"Write the archive under this directory instead of uploading"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL     string `arg:"" help:"Page URL"`
	Backend string `enum:"opensource,diffbot" default:"opensource" help:"Extraction backend"`
	Out     string `type:"path" help:"Write the archive under this directory instead of uploading"`
}

// outDir returns the --out flag of the selected command.
func (c *CLI) outDir() string {
	if c.PDF.Out != "" {
		return c.PDF.Out
	}
	return c.Scrape.Out
}
