// Package goquery extracts content streams from HTML pages.
package goquery

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mdextract"
	"golang.org/x/net/html"
)

// Streams holds one function per content stream. Every stream reads the
// same parsed document, and each runs isolated so that a failure in one
// leaves the others intact.
type Streams struct {
	Text   func(doc *goquery.Document) string
	Images func(doc *goquery.Document, base *url.URL) []mdextract.ImageRecord
	Links  func(doc *goquery.Document, base *url.URL) []mdextract.LinkRecord
	Tables func(doc *goquery.Document) []mdextract.Table
}

// DefaultStreams returns the standard stream extractors.
func DefaultStreams() Streams {
	return Streams{
		Text:   ExtractText,
		Images: ExtractImages,
		Links:  ExtractLinks,
		Tables: ExtractTables,
	}
}

// Extract parses rawHTML once and runs every stream over it. A failing
// text stream is terminal; failing image, link or table streams degrade to
// empty collections and are recorded in Extraction.Failures.
func (s Streams) Extract(rawHTML string, base *url.URL, logger *slog.Logger) (*mdextract.Extraction, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, mdextract.Errorf(mdextract.EINVALID, "Failed to parse URL: %v", err)
	}

	ext := &mdextract.Extraction{}

	if err := isolate(func() { ext.Text = s.Text(doc) }); err != nil {
		logger.Error("text extraction failed", "url", base.String(), "err", err)
		return nil, mdextract.Errorf(mdextract.EINTERNAL, "Text extraction failed")
	}

	if err := isolate(func() { ext.Links = s.Links(doc, base) }); err != nil {
		logger.Warn("stream extraction failed", "stream", mdextract.StreamLinks, "url", base.String(), "err", err)
		ext.Links = nil
		ext.Fail(mdextract.StreamLinks, "URL extraction failed")
	}

	if err := isolate(func() { ext.Images = s.Images(doc, base) }); err != nil {
		logger.Warn("stream extraction failed", "stream", mdextract.StreamImages, "url", base.String(), "err", err)
		ext.Images = nil
		ext.Fail(mdextract.StreamImages, "Image extraction failed")
	}

	if err := isolate(func() { ext.Tables = s.Tables(doc) }); err != nil {
		logger.Warn("stream extraction failed", "stream", mdextract.StreamTables, "url", base.String(), "err", err)
		ext.Tables = nil
		ext.Fail(mdextract.StreamTables, "Table extraction failed")
	}

	return ext, nil
}

// isolate runs fn and converts a panic into an error.
func isolate(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// skipText lists elements whose text is never rendered.
var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// ExtractText returns the visible text of the document with every run of
// whitespace collapsed to a single space. Adjacent text nodes are always
// separated by a space.
func ExtractText(doc *goquery.Document) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if skipText[n.Data] {
				return
			}
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// ExtractImages returns metadata for every <img> with a src. Position is
// the 1-based index among all <img> elements.
func ExtractImages(doc *goquery.Document, base *url.URL) []mdextract.ImageRecord {
	var images []mdextract.ImageRecord
	doc.Find("img").Each(func(i int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			return
		}
		images = append(images, mdextract.ImageRecord{
			Position: i + 1,
			Alt:      strings.TrimSpace(img.AttrOr("alt", "")),
			Src:      mdextract.ResolveURL(base, src),
			Width:    img.AttrOr("width", mdextract.NotAvailable),
			Height:   img.AttrOr("height", mdextract.NotAvailable),
		})
	})
	return images
}

// ExtractLinks returns metadata for every <a> with an href. Position is the
// 1-based index among all <a> elements.
func ExtractLinks(doc *goquery.Document, base *url.URL) []mdextract.LinkRecord {
	var links []mdextract.LinkRecord
	doc.Find("a").Each(func(i int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, mdextract.LinkRecord{
			Position: i + 1,
			URL:      mdextract.ResolveURL(base, href),
			Text:     strings.TrimSpace(a.Text()),
			Title:    a.AttrOr("title", mdextract.NotAvailable),
		})
	})
	return links
}

// ExtractTables returns every <table> that has at least one well-formed
// row. The header is the table's <th> cells; without any, positional names
// Column_0, Column_1, ... are synthesized from the first row's <td> count.
// Rows whose <td> count differs from the header count are dropped.
func ExtractTables(doc *goquery.Document) []mdextract.Table {
	var tables []mdextract.Table
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(th.Text()))
		})
		if len(headers) == 0 {
			if first := table.Find("tr").First(); first.Length() > 0 {
				for i := range first.Find("td").Length() {
					headers = append(headers, fmt.Sprintf("Column_%d", i))
				}
			}
		}

		t := mdextract.NewTable("", headers)
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td")
			if tds.Length() == 0 {
				return
			}
			row := make([]string, 0, tds.Length())
			tds.Each(func(_ int, td *goquery.Selection) {
				row = append(row, strings.TrimSpace(td.Text()))
			})
			t.AppendRow(row)
		})

		if len(t.Rows) > 0 {
			tables = append(tables, *t)
		}
	})
	return tables
}
