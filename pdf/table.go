package pdf

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fwojciec/mdextract"
)

// Fragment is a run of text placed on a page row.
type Fragment struct {
	X float64
	W float64
	S string
}

// SplitCells orders fragments left to right and merges those separated by
// at most gap points. Each merged run is one cell.
func SplitCells(frags []Fragment, gap float64) []string {
	if len(frags) == 0 {
		return nil
	}
	sorted := slices.Clone(frags)
	slices.SortStableFunc(sorted, func(a, b Fragment) int { return cmp.Compare(a.X, b.X) })

	var cells []string
	var cur strings.Builder
	end := sorted[0].X
	for i, f := range sorted {
		if i > 0 && f.X-end > gap {
			cells = appendCell(cells, cur.String())
			cur.Reset()
		}
		cur.WriteString(f.S)
		end = max(end, f.X+f.W)
	}
	return appendCell(cells, cur.String())
}

func appendCell(cells []string, s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return cells
	}
	return append(cells, s)
}

// DetectTables finds runs of at least minRows consecutive rows that share
// the same cell count of two or more. The first row of a run becomes the
// header.
func DetectTables(rows [][]string, minRows int) []*mdextract.Table {
	minRows = max(minRows, 2)

	var tables []*mdextract.Table
	flush := func(run [][]string) {
		if len(run) < minRows {
			return
		}
		t := mdextract.NewTable("", run[0])
		for _, r := range run[1:] {
			t.AppendRow(r)
		}
		tables = append(tables, t)
	}

	var run [][]string
	for _, r := range rows {
		if len(r) >= 2 && (len(run) == 0 || len(run[0]) == len(r)) {
			run = append(run, r)
			continue
		}
		flush(run)
		run = nil
		if len(r) >= 2 {
			run = append(run, r)
		}
	}
	flush(run)
	return tables
}
