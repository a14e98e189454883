package extract

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/table"
)

// sampleColumn names the sample column of sampleColumn layouts.
const sampleColumn = "Sample"

func segmentFile(r io.Reader, path string, rule *rules.Rule, st *State) error {
	rr := newRowReader(r, path, st)
	header, err := rr.next()
	if err == io.EOF {
		st.Warnings.Addf("%s: empty file", rr.file)
		return nil
	}
	if err != nil {
		return err
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = rule.Normalize(h)
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, ok := index[n]; !ok {
			index[n] = i
		}
	}

	var missing []string
	pos := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	chrom, start, end := pos(rules.FieldChrom), pos(rules.FieldStart), pos(rules.FieldEnd)

	value := -1
	for _, f := range rule.ProbeFields {
		if i, ok := index[rule.Normalize(f)]; ok {
			value = i
			break
		}
	}
	if value < 0 {
		missing = append(missing, strings.Join(rule.ProbeFields, "|"))
	}

	sample := -1
	switch rule.Layout {
	case rules.LayoutFirstColumnKey:
		sample = 0
	case rules.LayoutSampleColumn:
		sample = pos(sampleColumn)
	case rules.LayoutFileKeyed:
	default:
		st.Warnings.Addf("%s: layout %v does not apply to segments", rr.file, rule.Layout)
		return nil
	}

	if len(missing) > 0 {
		st.Warnings.Addf("%s: missing segment columns %s", rr.file, strings.Join(missing, ", "))
		return nil
	}

	aux := -1
	if rule.AuxField != "" {
		if i, ok := index[rule.Normalize(rule.AuxField)]; ok {
			aux = i
			st.Segments.AuxName = rule.AuxField
		}
	}

	required := max(chrom, start, end, value, sample, aux) + 1
	base := filepath.Base(path)
	short := 0
	for {
		row, err := rr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) < required {
			short++
			continue
		}
		seg := table.Segment{
			Chrom: row[chrom],
			Start: row[start],
			End:   row[end],
			Value: row[value],
		}
		if sample >= 0 {
			seg.Sample = row[sample]
		} else {
			seg.Sample = base
		}
		if aux >= 0 {
			seg.Aux = row[aux]
		}
		st.Segments.Append(seg)
	}

	if short > 0 {
		st.Warnings.Addf("%s: %d short rows skipped", rr.file, short)
	}
	return nil
}
