package mdextract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
)

// Column headers of the metadata CSV files.
var (
	ImageColumns = []string{"position", "alt", "src", "width", "height"}
	LinkColumns  = []string{"position", "url", "text", "title"}
)

// WriteTableCSV writes t as CSV: the column names first, then every row in
// order. Column order and row order are preserved exactly.
func WriteTableCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ReadTableCSV parses CSV written by WriteTableCSV. The first record becomes
// the column names; every following record must have the same length.
func ReadTableCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, Errorf(EINVALID, "malformed table CSV: %v", err)
	}
	if len(records) == 0 {
		return nil, Errorf(EINVALID, "table CSV has no header")
	}
	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ImagesCSV serializes image metadata. Image bytes are not included.
func ImagesCSV(images []ImageRecord) ([]byte, error) {
	t := NewTable("", ImageColumns)
	for _, img := range images {
		t.AppendRow([]string{
			strconv.Itoa(img.Position),
			img.Alt,
			img.Src,
			img.Width,
			img.Height,
		})
	}
	return tableBytes(t)
}

// LinksCSV serializes link metadata.
func LinksCSV(links []LinkRecord) ([]byte, error) {
	t := NewTable("", LinkColumns)
	for _, l := range links {
		t.AppendRow([]string{
			strconv.Itoa(l.Position),
			l.URL,
			l.Text,
			l.Title,
		})
	}
	return tableBytes(t)
}

func tableBytes(t *Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, errors.New("table has no columns")
	}
	var buf bytes.Buffer
	if err := WriteTableCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
