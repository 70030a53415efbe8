package htmltomarkdown

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/mdextract"
)

var _ mdextract.Converter = (*TextConverter)(nil)

// MaxHeadingWords bounds how long a line may be and still be read as a
// heading.
const MaxHeadingWords = 12

var (
	bulletRe  = regexp.MustCompile(`^[-*•▪◦‣]\s+(.+)$`)
	orderedRe = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
	sectionRe = regexp.MustCompile(`^(\d+(?:\.\d+)+)\.?\s+(\S.*)$`)
)

// TextConverter renders plain text as Markdown by recovering its block
// structure: headings, bullet and numbered lists, and paragraphs. The
// blocks are rendered as HTML and passed through Converter.
type TextConverter struct {
	html *Converter
}

// NewTextConverter creates a new TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{html: NewConverter()}
}

// Convert transforms text into Markdown.
func (c *TextConverter) Convert(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", mdextract.Errorf(mdextract.EINVALID, "empty text input")
	}

	md, err := c.html.ConvertHTML(TextToHTML(text))
	if err != nil {
		if mdextract.ErrorCode(err) == mdextract.ECONVERSION {
			return "", err
		}
		return "", mdextract.Wrap(mdextract.ECONVERSION, err)
	}
	return md, nil
}

// TextToHTML groups lines of text into HTML blocks. Blank lines end a
// paragraph; consecutive list lines of the same kind form one list.
func TextToHTML(text string) string {
	var b blockWriter
	for _, raw := range strings.Split(normalizeNewlines(text), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			b.flush()
		case bulletRe.MatchString(line):
			b.item("ul", bulletRe.FindStringSubmatch(line)[1])
		case sectionRe.MatchString(line):
			m := sectionRe.FindStringSubmatch(line)
			level := min(strings.Count(m[1], ".")+2, 6)
			b.heading(level, m[1]+" "+m[2])
		case orderedRe.MatchString(line):
			b.item("ol", orderedRe.FindStringSubmatch(line)[1])
		case isHeading(line):
			b.heading(2, line)
		default:
			b.para(line)
		}
	}
	b.flush()
	return b.sb.String()
}

// isHeading reports whether line is a short all-caps title.
func isHeading(line string) bool {
	if len(strings.Fields(line)) > MaxHeadingWords {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// blockWriter accumulates the open paragraph or list between lines.
type blockWriter struct {
	sb    strings.Builder
	lines []string
	list  string
	items []string
}

func (b *blockWriter) para(line string) {
	b.closeList()
	b.lines = append(b.lines, line)
}

func (b *blockWriter) item(kind, text string) {
	b.closePara()
	if b.list != kind {
		b.closeList()
		b.list = kind
	}
	b.items = append(b.items, text)
}

func (b *blockWriter) heading(level int, text string) {
	b.flush()
	tag := "h" + string(rune('0'+level))
	b.sb.WriteString("<" + tag + ">" + html.EscapeString(text) + "</" + tag + ">\n")
}

func (b *blockWriter) flush() {
	b.closePara()
	b.closeList()
}

func (b *blockWriter) closePara() {
	if len(b.lines) == 0 {
		return
	}
	b.sb.WriteString("<p>" + html.EscapeString(strings.Join(b.lines, " ")) + "</p>\n")
	b.lines = nil
}

func (b *blockWriter) closeList() {
	if b.list == "" {
		return
	}
	b.sb.WriteString("<" + b.list + ">")
	for _, it := range b.items {
		b.sb.WriteString("<li>" + html.EscapeString(it) + "</li>")
	}
	b.sb.WriteString("</" + b.list + ">\n")
	b.list = ""
	b.items = nil
}
