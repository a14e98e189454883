// Package tsv configures encoding/csv for the tab separated files found
// in TCGA archives.
package tsv

import (
	"encoding/csv"
	"io"
)

// NewReader returns a tab separated reader that tolerates ragged rows
// and stray quotes.
func NewReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// Index maps each header name to its first column position.
func Index(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// Positions maps each header name to every column carrying it, in
// order. TCGA SDRFs repeat file columns once per data level.
func Positions(header []string) map[string][]int {
	pos := make(map[string][]int, len(header))
	for i, name := range header {
		pos[name] = append(pos[name], i)
	}
	return pos
}
