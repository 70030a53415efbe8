package mock

import "github.com/fwojciec/mdextract"

var _ mdextract.Converter = (*Converter)(nil)

// Converter is a mock implementation of mdextract.Converter.
type Converter struct {
	ConvertFn func(text string) (string, error)
}

func (c *Converter) Convert(text string) (string, error) {
	return c.ConvertFn(text)
}

var _ mdextract.HTMLConverter = (*HTMLConverter)(nil)

// HTMLConverter is a mock implementation of mdextract.HTMLConverter.
type HTMLConverter struct {
	ConvertHTMLFn func(html string) (string, error)
}

func (c *HTMLConverter) ConvertHTML(html string) (string, error) {
	return c.ConvertHTMLFn(html)
}
