package table

import (
	"bufio"
	"io"
	"strings"
)

// MatrixCorner is the header cell above the row keys.
const MatrixCorner = "probes"

// ClinicalCorner is the header cell above the barcodes.
const ClinicalCorner = "sample"

// SegmentHeader is the fixed leading header of a segment table.
var SegmentHeader = []string{"Chromosome", "Start", "End", "Sample"}

func writeLine(w *bufio.Writer, cells []string) error {
	if _, err := w.WriteString(strings.Join(cells, "\t")); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// WriteMatrix renders m with rows in stored order and columns in cols
// order.
func WriteMatrix(out io.Writer, m *Matrix, cols []string) error {
	w := bufio.NewWriter(out)

	header := make([]string, 0, len(cols)+1)
	header = append(header, MatrixCorner)
	header = append(header, cols...)
	if err := writeLine(w, header); err != nil {
		return err
	}

	line := make([]string, len(cols)+1)
	for _, row := range m.Rows() {
		line[0] = row
		for i, col := range cols {
			line[i+1] = FormatValue(m.Get(row, col))
		}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteSegments renders s with the fixed segment column order.
func WriteSegments(out io.Writer, s *Segments) error {
	w := bufio.NewWriter(out)

	header := append([]string{}, SegmentHeader...)
	header = append(header, s.ValueName)
	if s.AuxName != "" {
		header = append(header, s.AuxName)
	}
	if err := writeLine(w, header); err != nil {
		return err
	}

	for _, r := range s.Rows {
		line := []string{r.Chrom, r.Start, r.End, r.Sample, FormatValue(r.Value)}
		if s.AuxName != "" {
			line = append(line, FormatValue(r.Aux))
		}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteClinical renders c; missing fields are empty cells.
func WriteClinical(out io.Writer, c *Clinical) error {
	w := bufio.NewWriter(out)

	header := make([]string, 0, len(c.Fields)+1)
	header = append(header, ClinicalCorner)
	header = append(header, c.Fields...)
	if err := writeLine(w, header); err != nil {
		return err
	}

	line := make([]string, len(c.Fields)+1)
	for _, r := range c.Rows {
		line[0] = r.Key
		for i, f := range c.Fields {
			line[i+1] = r.Values[f]
		}
		if err := writeLine(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}
