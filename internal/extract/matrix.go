package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/tsv"
)

// Header cells that open a two-row matrix header.
var twoRowMarkers = map[string]bool{"Hybridization REF": true, "Sample REF": true}

// Cell values read as missing data.
var missingValues = map[string]bool{
	"": true, "NA": true, "N/A": true, "NaN": true, "nan": true, "NULL": true, "null": true,
}

type rowReader struct {
	cr   *csv.Reader
	file string
	st   *State
	line int
}

func newRowReader(r io.Reader, path string, st *State) *rowReader {
	return &rowReader{cr: tsv.NewReader(r), file: filepath.Base(path), st: st}
}

// next returns the next parseable row, skipping malformed ones.
func (rr *rowReader) next() ([]string, error) {
	for {
		row, err := rr.cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		rr.line++
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				rr.st.Skips.Skip(err, fmt.Sprintf("%s:%d", rr.file, rr.line))
				continue
			}
			return nil, err
		}
		return row, nil
	}
}

func matrixFile(r io.Reader, path string, rule *rules.Rule, st *State) error {
	rr := newRowReader(r, path, st)
	header, err := rr.next()
	if err == io.EOF {
		st.Warnings.Addf("%s: empty file", rr.file)
		return nil
	}
	if err != nil {
		return err
	}

	switch rule.Layout {
	case rules.LayoutAuto:
		switch {
		case twoRowMarkers[header[0]]:
			return twoRowMatrix(rr, header, rule, st)
		case header[0] == "Chromosome" || header[0] == "chromosome" || cell(header, 1) == "chrom":
			st.Warnings.Addf("%s: segment formatted file under a matrix rule, skipped", rr.file)
			return nil
		default:
			return singleHeaderMatrix(rr, header, stem(path), rule, st)
		}
	case rules.LayoutNamedField:
		return singleHeaderMatrix(rr, header, filepath.Base(path), rule, st)
	case rules.LayoutPreMerged:
		return preMergedMatrix(rr, header, rule, st)
	case rules.LayoutKeyedTwoRow:
		return keyedTwoRowMatrix(rr, header, rule, st)
	default:
		st.Warnings.Addf("%s: layout %v does not apply to matrices", rr.file, rule.Layout)
		return nil
	}
}

// wantedColumns returns the positions after the index whose names match
// the rule's probe fields.
func wantedColumns(names []string, rule *rules.Rule) []int {
	var out []int
	for i := 1; i < len(names); i++ {
		if rule.Wants(names[i]) {
			out = append(out, i)
		}
	}
	return out
}

// fillColumn reads the remaining rows into one matrix column, taking the
// first wanted cell holding a value. Rows without any value are dropped.
func fillColumn(rr *rowReader, cols []int, column string, st *State) error {
	for {
		row, err := rr.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		for _, i := range cols {
			if v := cell(row, i); !missingValues[v] {
				st.Matrix.Set(row[0], column, v)
				break
			}
		}
	}
}

func warnMissing(st *State, file string, rule *rules.Rule) {
	st.Warnings.Addf("%s: no column matching %s", file, strings.Join(rule.ProbeFields, ", "))
}

// twoRowMatrix: row one names the sample, row two types the columns.
func twoRowMatrix(rr *rowReader, header []string, rule *rules.Rule, st *State) error {
	if len(header) < 2 {
		st.Warnings.Addf("%s: two-row header without a sample name", rr.file)
		return nil
	}
	sample := rule.Normalize(header[1])

	types, err := rr.next()
	if err == io.EOF {
		st.Warnings.Addf("%s: missing second header row", rr.file)
		return nil
	}
	if err != nil {
		return err
	}

	cols := wantedColumns(types, rule)
	if len(cols) == 0 {
		warnMissing(st, rr.file, rule)
		return nil
	}
	return fillColumn(rr, cols, sample, st)
}

// singleHeaderMatrix: the first column indexes rows, probe fields select
// the value column, which is named column.
func singleHeaderMatrix(rr *rowReader, header []string, column string, rule *rules.Rule, st *State) error {
	cols := wantedColumns(header, rule)
	if len(cols) == 0 {
		warnMissing(st, rr.file, rule)
		return nil
	}
	return fillColumn(rr, cols, column, st)
}

// keyedTwoRowMatrix: line one carries the sample key in its second cell
// and line two the field names. A repeated key replaces the column.
func keyedTwoRowMatrix(rr *rowReader, header []string, rule *rules.Rule, st *State) error {
	key := cell(header, 1)
	if key == "" {
		st.Warnings.Addf("%s: no sample key on the first line", rr.file)
		return nil
	}

	names, err := rr.next()
	if err == io.EOF {
		st.Warnings.Addf("%s: missing field name row", rr.file)
		return nil
	}
	if err != nil {
		return err
	}

	cols := wantedColumns(names, rule)
	if len(cols) == 0 {
		warnMissing(st, rr.file, rule)
		return nil
	}
	if st.Matrix.HasColumn(key) {
		st.Matrix.DropColumn(key)
	}
	return fillColumn(rr, cols, key, st)
}

// preMergedMatrix keeps every header column after the index as its own
// sample. A following type row naming probe fields is skipped.
func preMergedMatrix(rr *rowReader, header []string, rule *rules.Rule, st *State) error {
	if len(header) < 2 {
		st.Warnings.Addf("%s: no sample columns", rr.file)
		return nil
	}

	first := true
	for {
		row, err := rr.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if first {
			first = false
			if len(wantedColumns(row, rule)) > 0 {
				continue
			}
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		for i := 1; i < len(header); i++ {
			if v := cell(row, i); !missingValues[v] {
				st.Matrix.Set(row[0], header[i], v)
			}
		}
	}
}
