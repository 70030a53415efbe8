// Package pdf extracts text, tables and images from PDF documents locally.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/fs"
	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Default table detection parameters.
const (
	DefaultColumnGap    = 15.0
	DefaultMinTableRows = 3
)

var _ mdextract.Extractor = (*Extractor)(nil)

// Extractor implements the local PDF strategy.
type Extractor struct {
	// TempDir is the parent of staging workspaces. Empty uses the system
	// default.
	TempDir string

	// ColumnGap is the horizontal distance in points that separates two
	// table cells on one row.
	ColumnGap float64

	// MinTableRows is the shortest row run, header included, that counts
	// as a table.
	MinTableRows int

	Logger *slog.Logger
}

// NewExtractor returns an Extractor with default table parameters.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		ColumnGap:    DefaultColumnGap,
		MinTableRows: DefaultMinTableRows,
		Logger:       logger,
	}
}

// Extract stages the PDF bytes and extracts every stream from them.
// Per-page image and table failures are logged and skipped.
func (e *Extractor) Extract(ctx context.Context, req *mdextract.Request) (*mdextract.Extraction, error) {
	if len(req.PDF) == 0 {
		return nil, mdextract.Errorf(mdextract.EINVALID, "Empty PDF file")
	}

	ws, err := fs.NewWorkspace(e.TempDir, "pdf-*")
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	defer ws.Close()

	path, err := ws.WriteFile("input.pdf", req.PDF)
	if err != nil {
		return nil, mdextract.Wrap(mdextract.EINTERNAL, err)
	}

	var (
		f *os.File
		r *lpdf.Reader
	)
	if err := guard(func() error {
		var err error
		f, r, err = lpdf.Open(path)
		return err
	}); err != nil {
		return nil, mdextract.Errorf(mdextract.EINVALID, "Unable to read PDF: %v", err)
	}
	defer f.Close()

	ext := &mdextract.Extraction{}

	var pages []string
	for n := 1; n <= r.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}

		var text string
		if err := guard(func() error {
			var err error
			text, err = page.GetPlainText(nil)
			return err
		}); err != nil {
			e.logger().Warn("page text extraction failed", "page", n, "err", err)
		} else if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}

		var tables []*mdextract.Table
		if err := guard(func() error {
			var err error
			tables, err = e.pageTables(page)
			return err
		}); err != nil {
			e.logger().Warn("page table extraction failed", "page", n, "err", err)
			continue
		}
		for i, t := range tables {
			t.Name = fmt.Sprintf("page%d_table%d.csv", n, i+1)
			ext.Tables = append(ext.Tables, *t)
		}
	}
	ext.Text = strings.Join(pages, "\n")

	images, err := e.images(ctx, path)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		e.logger().Warn("image extraction failed", "err", err)
		ext.Fail(mdextract.StreamImages, "Image extraction failed")
	}
	ext.Images = images

	return ext, nil
}

func (e *Extractor) pageTables(page lpdf.Page) ([]*mdextract.Table, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}
	gap := e.ColumnGap
	if gap <= 0 {
		gap = DefaultColumnGap
	}
	minRows := e.MinTableRows
	if minRows <= 0 {
		minRows = DefaultMinTableRows
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		frags := make([]Fragment, 0, len(row.Content))
		for _, t := range row.Content {
			frags = append(frags, Fragment{X: t.X, W: t.W, S: t.S})
		}
		cells = append(cells, SplitCells(frags, gap))
	}
	return DetectTables(cells, minRows), nil
}

// images extracts embedded images in page order, ordered by object number
// within a page. Pages that fail are skipped; only a document pdfcpu
// cannot read at all is an error.
func (e *Extractor) images(ctx context.Context, path string) ([]mdextract.ImageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pctx *model.Context
	if err := guard(func() error {
		var err error
		pctx, err = api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
		return err
	}); err != nil {
		return nil, err
	}

	var records []mdextract.ImageRecord
	for n := 1; n <= pctx.PageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var page []mdextract.ImageRecord
		if err := guard(func() error {
			var err error
			page, err = pageImages(pctx, n)
			return err
		}); err != nil {
			e.logger().Warn("page image extraction failed", "page", n, "err", err)
			continue
		}
		for _, rec := range page {
			rec.Position = len(records) + 1
			records = append(records, rec)
		}
	}
	return records, nil
}

func pageImages(pctx *model.Context, n int) ([]mdextract.ImageRecord, error) {
	imgs, err := pdfcpu.ExtractPageImages(pctx, n, false)
	if err != nil {
		return nil, err
	}
	objNrs := make([]int, 0, len(imgs))
	for nr := range imgs {
		objNrs = append(objNrs, nr)
	}
	slices.Sort(objNrs)

	records := make([]mdextract.ImageRecord, 0, len(objNrs))
	for i, nr := range objNrs {
		img := imgs[nr]
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, img); err != nil {
			return nil, fmt.Errorf("read image %d: %w", nr, err)
		}
		name := fmt.Sprintf("page%d_img%d.%s", n, i+1, img.FileType)
		records = append(records, mdextract.ImageRecord{
			Src:    name,
			Width:  dimension(img.Width),
			Height: dimension(img.Height),
			Name:   name,
			Data:   buf.Bytes(),
		})
	}
	return records, nil
}

func dimension(v int) string {
	if v <= 0 {
		return mdextract.NotAvailable
	}
	return strconv.Itoa(v)
}

// guard runs fn and converts a panic into an error. The PDF readers panic
// on some malformed input.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
