package mdextract

// NotAvailable is recorded for metadata the source document does not carry.
const NotAvailable = "N/A"

// Stream names one independently failable category of extracted content.
type Stream string

// Stream constants.
const (
	StreamText   Stream = "text"
	StreamImages Stream = "images"
	StreamTables Stream = "tables"
	StreamLinks  Stream = "links"
)

// ImageRecord describes one image found in a document.
type ImageRecord struct {
	// Position is the 1-based assignment order within the source document.
	Position int

	Alt string

	// Src is the absolute image URL for web pages, or the archive-relative
	// file name for images extracted as bytes.
	Src string

	Width  string
	Height string

	// Name and Data are set only when the image bytes were extracted.
	Name string
	Data []byte
}

// LinkRecord describes one hyperlink found in a web page.
type LinkRecord struct {
	Position int

	// URL is always absolute, resolved against the page URL.
	URL string

	Text  string
	Title string
}

// Table is tabular data with named columns. Every row has exactly
// len(Columns) cells.
type Table struct {
	// Name is the archive file name, if the strategy assigns one.
	Name string

	Columns []string
	Rows    [][]string
}

// NewTable returns an empty table with the given columns.
func NewTable(name string, columns []string) *Table {
	return &Table{Name: name, Columns: columns}
}

// AppendRow adds row if its cell count matches the column count.
// Mismatched rows are dropped, not padded; the return value reports
// whether the row was kept.
func (t *Table) AppendRow(row []string) bool {
	if len(row) != len(t.Columns) {
		return false
	}
	t.Rows = append(t.Rows, row)
	return true
}

// Extraction holds the content streams produced by one strategy run.
// Remote strategies fill Report or Bundle instead of the individual streams.
type Extraction struct {
	Text   string
	Images []ImageRecord
	Tables []Table
	Links  []LinkRecord

	// Report is a markdown report produced by a remote analysis service.
	Report string

	// Bundle is an opaque archive produced by a remote document service.
	Bundle []byte

	// Failures records the streams that degraded to empty and why.
	Failures map[Stream]string
}

// Fail records a partial failure of one stream.
func (e *Extraction) Fail(s Stream, reason string) {
	if e.Failures == nil {
		e.Failures = make(map[Stream]string)
	}
	e.Failures[s] = reason
}
