package mdextract

// Converter produces a markdown rendering of normalized text.
type Converter interface {
	// Convert transforms text into Markdown. Failures are ECONVERSION errors
	// wrapping the underlying cause.
	Convert(text string) (string, error)
}

// HTMLConverter converts HTML to Markdown.
type HTMLConverter interface {
	// ConvertHTML transforms HTML content into Markdown.
	ConvertHTML(html string) (string, error)
}
