package mdextract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
)

// Fixed archive paths.
const (
	DoclingPath     = "docling.md"
	MarkitdownPath  = "markitdown.md"
	ContentPath     = "content.txt"
	ImagesMetaPath  = "images/images_metadata.csv"
	LinksMetaPath   = "urls/urls_metadata.csv"
	PlaceholderName = ".placeholder"

	imagesDir = "images"
	tablesDir = "tables"
	linksDir  = "urls"
)

// ArchiveContentType is the media type of encoded archives.
const ArchiveContentType = "application/zip"

// ArchiveEntry is one file of an archive.
type ArchiveEntry struct {
	Path string
	Data []byte
}

// Archive is an ordered mapping from relative path to file content.
// Encoding the same archive always yields the same bytes.
type Archive struct {
	entries []ArchiveEntry
	index   map[string]int

	// bundle is an opaque, already-encoded archive passed through verbatim.
	bundle []byte
}

// NewArchive returns an empty archive.
func NewArchive() *Archive {
	return &Archive{index: make(map[string]int)}
}

// BundleArchive wraps an already-encoded archive. Its bytes are delivered
// unchanged.
func BundleArchive(data []byte) *Archive {
	return &Archive{bundle: data, index: make(map[string]int)}
}

// Passthrough reports whether the archive wraps an opaque bundle.
func (a *Archive) Passthrough() bool {
	return a.bundle != nil
}

// Add stores data at p. Adding an existing path replaces its content and
// keeps its original position.
func (a *Archive) Add(p string, data []byte) {
	if i, ok := a.index[p]; ok {
		a.entries[i].Data = data
		return
	}
	a.index[p] = len(a.entries)
	a.entries = append(a.entries, ArchiveEntry{Path: p, Data: data})
}

// File returns the content stored at p.
func (a *Archive) File(p string) ([]byte, bool) {
	i, ok := a.index[p]
	if !ok {
		return nil, false
	}
	return a.entries[i].Data, true
}

// Paths returns every path in insertion order.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		paths = append(paths, e.Path)
	}
	return paths
}

// Zip writes the archive as a deflated ZIP file. Entries carry no
// modification time.
func (a *Archive) Zip(w io.Writer) error {
	if a.bundle != nil {
		_, err := w.Write(a.bundle)
		return err
	}

	zw := zip.NewWriter(w)
	for _, e := range a.entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:   e.Path,
			Method: zip.Deflate,
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(e.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Bytes returns the encoded archive.
func (a *Archive) Bytes() ([]byte, error) {
	if a.bundle != nil {
		return a.bundle, nil
	}
	var buf bytes.Buffer
	if err := a.Zip(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadArchive decodes a ZIP file into an Archive.
func ReadArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, Errorf(EINVALID, "malformed archive: %v", err)
	}
	a := NewArchive()
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		a.Add(f.Name, content)
	}
	return a, nil
}

// BuildArchive lays out a result:
//
//	docling.md
//	markitdown.md
//	content.txt                  (only when there is raw text)
//	images/images_metadata.csv   plus extracted image files, or images/.placeholder
//	tables/<name>.csv            or tables/.placeholder
//	urls/urls_metadata.csv       or urls/.placeholder
//
// Every category always has an entry. Pass-through results yield a bundle
// archive.
func BuildArchive(r *Result) (*Archive, error) {
	if r.Bundle != nil {
		return BundleArchive(r.Bundle), nil
	}

	a := NewArchive()
	a.Add(DoclingPath, []byte(r.DoclingMarkdown))
	a.Add(MarkitdownPath, []byte(r.MarkitdownMarkdown))
	if r.RawText != "" {
		a.Add(ContentPath, []byte(r.RawText))
	}

	if len(r.Images) == 0 {
		a.Add(path.Join(imagesDir, PlaceholderName), []byte{})
	} else {
		meta, err := ImagesCSV(r.Images)
		if err != nil {
			return nil, fmt.Errorf("images metadata: %w", err)
		}
		a.Add(ImagesMetaPath, meta)
		for _, img := range r.Images {
			if img.Name != "" && img.Data != nil {
				a.Add(path.Join(imagesDir, img.Name), img.Data)
			}
		}
	}

	if len(r.Tables) == 0 {
		a.Add(path.Join(tablesDir, PlaceholderName), []byte{})
	} else {
		for i := range r.Tables {
			t := &r.Tables[i]
			name := t.Name
			if name == "" {
				name = fmt.Sprintf("table_%d.csv", i+1)
			}
			data, err := tableBytes(t)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", name, err)
			}
			a.Add(path.Join(tablesDir, name), data)
		}
	}

	if len(r.Links) == 0 {
		a.Add(path.Join(linksDir, PlaceholderName), []byte{})
	} else {
		meta, err := LinksCSV(r.Links)
		if err != nil {
			return nil, fmt.Errorf("urls metadata: %w", err)
		}
		a.Add(LinksMetaPath, meta)
	}

	return a, nil
}
