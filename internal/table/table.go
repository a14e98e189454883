// Package table holds the accumulated output tables and renders them
// as tab separated text.
package table

import (
	"math"
	"strconv"
)

// Matrix is an ordered row key x ordered column key table of strings.
// Rows and columns keep first-seen order; empty cells are not stored.
type Matrix struct {
	rows   []string
	rowSet map[string]struct{}
	cols   []string
	data   map[string]map[string]string // column -> row -> value
}

// NewMatrix returns an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{
		rowSet: make(map[string]struct{}),
		data:   make(map[string]map[string]string),
	}
}

// Set stores value at (row, col). Empty values are ignored, so a later
// non-empty value overrides an earlier one but never the reverse.
func (m *Matrix) Set(row, col, value string) {
	if value == "" {
		return
	}
	if _, ok := m.rowSet[row]; !ok {
		m.rowSet[row] = struct{}{}
		m.rows = append(m.rows, row)
	}
	column, ok := m.data[col]
	if !ok {
		column = make(map[string]string)
		m.data[col] = column
		m.cols = append(m.cols, col)
	}
	column[row] = value
}

// Get returns the cell at (row, col) or "".
func (m *Matrix) Get(row, col string) string {
	return m.data[col][row]
}

// HasColumn reports whether col holds any value.
func (m *Matrix) HasColumn(col string) bool {
	_, ok := m.data[col]
	return ok
}

// DropColumn removes a column. Rows only it contributed stay in place.
func (m *Matrix) DropColumn(col string) {
	if _, ok := m.data[col]; !ok {
		return
	}
	delete(m.data, col)
	for i, c := range m.cols {
		if c == col {
			m.cols = append(m.cols[:i], m.cols[i+1:]...)
			break
		}
	}
}

// Rows returns the row keys in first-seen order.
func (m *Matrix) Rows() []string { return m.rows }

// Columns returns the column keys in first-seen order.
func (m *Matrix) Columns() []string { return m.cols }

// Empty reports whether no cell is set.
func (m *Matrix) Empty() bool { return len(m.cols) == 0 }

// Segment is one interval record.
type Segment struct {
	Chrom  string
	Start  string
	End    string
	Sample string
	Value  string
	Aux    string
}

// Segments is a row oriented interval table.
type Segments struct {
	ValueName string
	AuxName   string // empty when the table has no aux column
	Rows      []Segment
}

// Append adds rows in order.
func (s *Segments) Append(rows ...Segment) {
	s.Rows = append(s.Rows, rows...)
}

// Clinical is a barcode x field table.
type Clinical struct {
	Fields []string
	Rows   []ClinicalRow
}

// ClinicalRow holds one barcode's field values.
type ClinicalRow struct {
	Key    string
	Values map[string]string
}

// FormatValue renders a numeric cell. Integer literals and non numeric
// text are returned as is; other finite numbers use six significant
// digits.
func FormatValue(s string) string {
	if s == "" {
		return s
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}
