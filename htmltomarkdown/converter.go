// Package htmltomarkdown renders HTML and plain text as Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/mdextract"
)

// Ensure Converter implements mdextract.HTMLConverter at compile time.
var _ mdextract.HTMLConverter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// ConvertHTML transforms HTML content into Markdown.
func (c *Converter) ConvertHTML(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", mdextract.Errorf(mdextract.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", mdextract.Wrap(mdextract.ECONVERSION, err)
	}

	return result, nil
}
