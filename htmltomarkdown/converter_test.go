package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements mdextract.HTMLConverter at compile time.
var _ mdextract.HTMLConverter = (*htmltomarkdown.Converter)(nil)

func TestConverter_ConvertHTML(t *testing.T) {
	t.Parallel()

	t.Run("converts headings and paragraphs", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Report</h1><h2>Summary</h2><p>Revenue grew.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.ConvertHTML(html)

		require.NoError(t, err)
		assert.Contains(t, md, "# Report")
		assert.Contains(t, md, "## Summary")
		assert.Contains(t, md, "Revenue grew.")
	})

	t.Run("converts links", func(t *testing.T) {
		t.Parallel()

		html := `<p>See <a href="https://example.com">the site</a>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.ConvertHTML(html)

		require.NoError(t, err)
		assert.Contains(t, md, "[the site](https://example.com)")
	})

	t.Run("converts lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li>Apples</li><li>Pears</li></ul><ol><li>One</li><li>Two</li></ol>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.ConvertHTML(html)

		require.NoError(t, err)
		assert.Contains(t, md, "- Apples")
		assert.Contains(t, md, "- Pears")
		assert.Contains(t, md, "1. One")
		assert.Contains(t, md, "2. Two")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Quarter</th><th>Sales</th></tr></thead>
<tbody><tr><td>Q1</td><td>10</td></tr></tbody>
</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.ConvertHTML(html)

		require.NoError(t, err)
		// Cells may be padded for alignment.
		assert.Contains(t, md, "Quarter")
		assert.Contains(t, md, "Q1")
		assert.Contains(t, md, "|")
		assert.Contains(t, md, "---")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.ConvertHTML("  ")

		require.Error(t, err)
		assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))
	})
}
