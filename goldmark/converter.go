// Package goldmark renders files as Markdown, parsing Markdown input with
// goldmark before normalizing it.
package goldmark

import (
	"bytes"
	"errors"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/mdextract"
	mdfs "github.com/fwojciec/mdextract/fs"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var _ mdextract.Converter = (*Converter)(nil)

// Converter converts text by staging it as a Markdown file and converting
// that file. Markdown syntax in the text is therefore interpreted, not
// escaped.
type Converter struct {
	// TempDir is the parent of the staging workspaces. Empty uses the
	// system default.
	TempDir string

	md     goldmark.Markdown
	html   mdextract.HTMLConverter
	policy *bluemonday.Policy
}

// NewConverter returns a Converter that renders intermediate HTML with
// htmlConv.
func NewConverter(htmlConv mdextract.HTMLConverter) *Converter {
	return &Converter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		html:   htmlConv,
		policy: bluemonday.UGCPolicy(),
	}
}

// Convert stages text into a temporary .md file and converts it. The file
// is removed before Convert returns.
func (c *Converter) Convert(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", mdextract.Errorf(mdextract.EINVALID, "empty text input")
	}

	ws, err := mdfs.NewWorkspace(c.TempDir, "markitdown-*")
	if err != nil {
		return "", mdextract.Wrap(mdextract.EINTERNAL, err)
	}
	defer ws.Close()

	path, err := ws.WriteFile("input.md", []byte(text))
	if err != nil {
		return "", mdextract.Wrap(mdextract.EINTERNAL, err)
	}

	return c.ConvertFile(path)
}

// ConvertFile converts the file at path to Markdown, choosing the reader
// from its extension: .md and .markdown, .txt, .html and .htm, .csv.
// HTML files are sanitized before conversion.
func (c *Converter) ConvertFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown", ".txt", ".html", ".htm", ".csv":
	default:
		return "", mdextract.Errorf(mdextract.EINVALID, "unsupported file type %q", ext)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", mdextract.Errorf(mdextract.ENOTFOUND, "file not found: %s", filepath.Base(path))
	} else if err != nil {
		return "", mdextract.Wrap(mdextract.EINTERNAL, err)
	}

	switch ext {
	case ".md", ".markdown":
		return c.convertMarkdown(data)
	case ".txt":
		return normalizeText(string(data)), nil
	case ".csv":
		return c.convertCSV(data)
	default:
		return c.convertHTML(c.policy.Sanitize(string(data)))
	}
}

func (c *Converter) convertMarkdown(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(data, &buf); err != nil {
		return "", mdextract.Wrap(mdextract.ECONVERSION, err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", nil
	}
	return c.convertHTML(buf.String())
}

func (c *Converter) convertCSV(data []byte) (string, error) {
	t, err := mdextract.ReadTableCSV(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return c.convertHTML(tableHTML(t))
}

func (c *Converter) convertHTML(s string) (string, error) {
	md, err := c.html.ConvertHTML(s)
	if err != nil {
		if mdextract.ErrorCode(err) == mdextract.ECONVERSION {
			return "", err
		}
		return "", mdextract.Errorf(mdextract.ECONVERSION, "%s", mdextract.ErrorMessage(err))
	}
	return md, nil
}

// normalizeText converts line endings to \n and trims trailing blank
// space.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimRight(s, " \t\n")
}

func tableHTML(t *mdextract.Table) string {
	var sb strings.Builder
	sb.WriteString("<table><thead><tr>")
	for _, col := range t.Columns {
		sb.WriteString("<th>" + html.EscapeString(col) + "</th>")
	}
	sb.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}
