package mdextract_test

import (
	"bytes"
	"testing"

	"github.com/fwojciec/mdextract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullResult() *mdextract.Result {
	return &mdextract.Result{
		DoclingMarkdown:    "# Doc",
		MarkitdownMarkdown: "# Mark",
		RawText:            "raw text",
		Images: []mdextract.ImageRecord{
			{Position: 1, Alt: "a", Src: "https://example.test/a.png", Width: "1", Height: "2"},
		},
		Tables: []mdextract.Table{
			{Columns: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}},
			{Columns: []string{"k"}, Rows: [][]string{{"v"}}},
		},
		Links: []mdextract.LinkRecord{
			{Position: 1, URL: "https://example.test/b", Text: "b", Title: mdextract.NotAvailable},
		},
	}
}

func TestBuildArchive(t *testing.T) {
	t.Parallel()

	t.Run("lays out every category", func(t *testing.T) {
		t.Parallel()

		a, err := mdextract.BuildArchive(fullResult())
		require.NoError(t, err)

		assert.Equal(t, []string{
			"docling.md",
			"markitdown.md",
			"content.txt",
			"images/images_metadata.csv",
			"tables/table_1.csv",
			"tables/table_2.csv",
			"urls/urls_metadata.csv",
		}, a.Paths())

		data, ok := a.File("tables/table_1.csv")
		require.True(t, ok)
		assert.Equal(t, "x,y\n1,2\n", string(data))
	})

	t.Run("writes placeholders for empty categories", func(t *testing.T) {
		t.Parallel()

		a, err := mdextract.BuildArchive(&mdextract.Result{
			DoclingMarkdown:    "d",
			MarkitdownMarkdown: "m",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"docling.md",
			"markitdown.md",
			"images/.placeholder",
			"tables/.placeholder",
			"urls/.placeholder",
		}, a.Paths())
		_, ok := a.File(mdextract.ImagesMetaPath)
		assert.False(t, ok)
		_, ok = a.File(mdextract.LinksMetaPath)
		assert.False(t, ok)
	})

	t.Run("uses strategy-assigned table names and image files", func(t *testing.T) {
		t.Parallel()

		a, err := mdextract.BuildArchive(&mdextract.Result{
			Images: []mdextract.ImageRecord{
				{Position: 1, Src: "page1_img1.png", Name: "page1_img1.png", Data: []byte{0x89, 'P', 'N', 'G'}, Width: "4", Height: "4"},
			},
			Tables: []mdextract.Table{
				{Name: "page2_table1.csv", Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}},
			},
		})
		require.NoError(t, err)

		img, ok := a.File("images/page1_img1.png")
		require.True(t, ok)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img)
		_, ok = a.File("tables/page2_table1.csv")
		assert.True(t, ok)
		_, ok = a.File("images/images_metadata.csv")
		assert.True(t, ok)
	})

	t.Run("passes bundles through unchanged", func(t *testing.T) {
		t.Parallel()

		bundle := []byte("PK\x03\x04opaque")
		a, err := mdextract.BuildArchive(&mdextract.Result{Bundle: bundle})
		require.NoError(t, err)

		assert.True(t, a.Passthrough())
		data, err := a.Bytes()
		require.NoError(t, err)
		assert.Equal(t, bundle, data)
	})
}

func TestArchive_Bytes(t *testing.T) {
	t.Parallel()

	t.Run("equal results encode identically", func(t *testing.T) {
		t.Parallel()

		a1, err := mdextract.BuildArchive(fullResult())
		require.NoError(t, err)
		a2, err := mdextract.BuildArchive(fullResult())
		require.NoError(t, err)

		b1, err := a1.Bytes()
		require.NoError(t, err)
		b2, err := a2.Bytes()
		require.NoError(t, err)
		assert.True(t, bytes.Equal(b1, b2))
	})

	t.Run("round-trips through ReadArchive", func(t *testing.T) {
		t.Parallel()

		a, err := mdextract.BuildArchive(fullResult())
		require.NoError(t, err)
		data, err := a.Bytes()
		require.NoError(t, err)

		got, err := mdextract.ReadArchive(data)
		require.NoError(t, err)
		assert.Equal(t, a.Paths(), got.Paths())

		md, ok := got.File("docling.md")
		require.True(t, ok)
		assert.Equal(t, "# Doc", string(md))

		placeholder := mdextract.NewArchive()
		placeholder.Add("images/.placeholder", []byte{})
		data, err = placeholder.Bytes()
		require.NoError(t, err)
		got, err = mdextract.ReadArchive(data)
		require.NoError(t, err)
		empty, ok := got.File("images/.placeholder")
		require.True(t, ok)
		assert.Empty(t, empty)
	})

	t.Run("replacing a path keeps its position", func(t *testing.T) {
		t.Parallel()

		a := mdextract.NewArchive()
		a.Add("a", []byte("1"))
		a.Add("b", []byte("2"))
		a.Add("a", []byte("3"))

		assert.Equal(t, []string{"a", "b"}, a.Paths())
		data, _ := a.File("a")
		assert.Equal(t, "3", string(data))
	})
}

func TestReadArchive_Malformed(t *testing.T) {
	t.Parallel()

	_, err := mdextract.ReadArchive([]byte("not a zip"))
	assert.Equal(t, mdextract.EINVALID, mdextract.ErrorCode(err))
}
