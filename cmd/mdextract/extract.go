package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/mdextract"
)

// Run executes the pdf command.
func (c *PDFCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	req := mdextract.NewPDFRequest(filepath.Base(c.File), data, mdextract.Backend(c.Backend))
	return process(deps, req)
}

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	backend := mdextract.BackendOpenSource
	if c.Backend == "diffbot" {
		backend = mdextract.BackendEnterprise
	}
	return process(deps, mdextract.NewWebRequest(c.URL, backend))
}

func process(deps *Dependencies, req *mdextract.Request) error {
	d, err := deps.Processor.Process(deps.Ctx, req, "")
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mdextract.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, d.Message)
	fmt.Fprintln(deps.Stdout, d.DownloadURL)
	return nil
}
