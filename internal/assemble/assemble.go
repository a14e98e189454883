// Package assemble turns accumulated extraction state into canonical
// output tables: keys are translated, unwanted samples dropped, and
// rows and columns put in their published order.
package assemble

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/extract"
	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/samplekey"
	"github.com/nishad/tcgaimport/internal/stage"
	"github.com/nishad/tcgaimport/internal/table"
)

// DroppedKey marks a sample the translation tables reject.
const DroppedKey = "NA"

// SanitizedFields are removed from clinical tables in sanitize mode.
var SanitizedFields = []string{"race", "ethnicity"}

// Options control assembly. A nil Translator leaves keys unchanged.
type Options struct {
	Translator     *samplekey.Translator
	RemoveControls bool
	Sanitize       bool
}

func (o Options) translate(key string) string {
	if o.Translator == nil {
		return key
	}
	return o.Translator.Translate(key)
}

// keep reports whether a translated sample key survives filtering.
func (o Options) keep(key string) bool {
	if key == DroppedKey {
		return false
	}
	return !o.RemoveControls || !rules.IsControl(key)
}

// Matrix translates column keys and returns the merged matrix with its
// columns in sorted order. Columns translating to the same key collapse;
// a later non-empty cell overrides an earlier one.
func Matrix(m *table.Matrix, opt Options) (*table.Matrix, []string) {
	names := make(map[string]string, len(m.Columns()))
	var order []string
	for _, col := range m.Columns() {
		key := opt.translate(col)
		if !opt.keep(key) {
			continue
		}
		names[col] = key
		order = append(order, col)
	}

	out := table.NewMatrix()
	for _, row := range m.Rows() {
		for _, col := range order {
			out.Set(row, names[col], m.Get(row, col))
		}
	}

	cols := append([]string(nil), out.Columns()...)
	sort.Strings(cols)
	return out, cols
}

// Segments translates sample keys, filters them and reduces chromosome
// names to their digits and X/Y letters.
func Segments(s *table.Segments, opt Options) *table.Segments {
	out := &table.Segments{ValueName: s.ValueName, AuxName: s.AuxName}
	for _, r := range s.Rows {
		r.Sample = opt.translate(r.Sample)
		if !opt.keep(r.Sample) {
			continue
		}
		r.Chrom = NumericChrom(r.Chrom)
		out.Append(r)
	}
	return out
}

// NumericChrom keeps only digits and the letters x, y, X and Y.
func NumericChrom(chrom string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == 'x', r == 'y', r == 'X', r == 'Y':
			return r
		}
		return -1
	}, chrom)
}

// Clinical merges key sorted records into one table. Fields are
// numbered in first-seen order; a record repeating a key updates the
// same row.
func Clinical(records []stage.Record, opt Options) (*table.Clinical, error) {
	out := &table.Clinical{}
	rows := make(map[string]int)
	seen := make(map[string]bool)
	drop := make(map[string]bool)
	if opt.Sanitize {
		for _, f := range SanitizedFields {
			drop[f] = true
		}
	}

	for _, rec := range records {
		if !opt.keep(rec.Key) {
			continue
		}
		var fields stage.Fields
		if err := rec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("failed to decode record %q: %w", rec.Key, err)
		}

		i, ok := rows[rec.Key]
		if !ok {
			i = len(out.Rows)
			rows[rec.Key] = i
			out.Rows = append(out.Rows, table.ClinicalRow{Key: rec.Key, Values: make(map[string]string)})
		}
		for _, name := range fields.Names() {
			if drop[name] {
				continue
			}
			v, _ := fields.Value(name)
			out.Rows[i].Values[name] = ASCII(v)
			if !seen[name] {
				seen[name] = true
				out.Fields = append(out.Fields, name)
			}
		}
	}
	return out, nil
}

// ASCII replaces every non-ASCII rune with '?'.
func ASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7f {
			return '?'
		}
		return r
	}, s)
}

// Write assembles the table accumulated in st and renders it to path.
// It reports false, writing nothing, when no row survives.
func Write(path string, rule *rules.Rule, st *extract.State, opt Options) (bool, error) {
	const op errors.Op = "assemble.Write"

	var render func(f *os.File) error
	switch rule.Shape {
	case rules.Matrix:
		m, cols := Matrix(st.Matrix, opt)
		if m.Empty() {
			return false, nil
		}
		render = func(f *os.File) error { return table.WriteMatrix(f, m, cols) }
	case rules.Segment:
		s := Segments(st.Segments, opt)
		if len(s.Rows) == 0 {
			return false, nil
		}
		render = func(f *os.File) error { return table.WriteSegments(f, s) }
	case rules.Clinical:
		records, err := st.Channel.Consolidate(rule.DataSubType)
		if err != nil {
			return false, errors.E(op, errors.KindIO, err)
		}
		c, err := Clinical(records, opt)
		if err != nil {
			return false, errors.E(op, errors.KindParse, err)
		}
		if len(c.Rows) == 0 {
			return false, nil
		}
		render = func(f *os.File) error { return table.WriteClinical(f, c) }
	default:
		return false, errors.E(op, errors.KindConfig, fmt.Sprintf("%s tables are not assembled", rule.Shape))
	}

	f, err := os.Create(path)
	if err != nil {
		return false, errors.E(op, errors.KindIO, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return false, errors.E(op, errors.KindIO, err, "failed to render table")
	}
	if err := f.Close(); err != nil {
		return false, errors.E(op, errors.KindIO, err)
	}
	return true, nil
}
