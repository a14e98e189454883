package extract

import (
	"io"
	"path/filepath"

	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/stage"
	"github.com/nishad/tcgaimport/internal/xmltree"
)

func clinicalFile(r io.Reader, path string, rule *rules.Rule, st *State) error {
	base := filepath.Base(path)
	rec, ok := rules.ClinicalRecords[rule.DataSubType]
	if !ok {
		st.Warnings.Addf("%s: no clinical record kind %q", base, rule.DataSubType)
		return nil
	}

	root, err := xmltree.Parse(r)
	if err != nil {
		st.Warnings.Addf("%s: %v", base, err)
		return nil
	}

	for m := range xmltree.Query(root, rec.Path) {
		name := m.Name()
		barcode, found := xmltree.LastText(m.Node, name+"/"+rec.Barcode)
		if !found || barcode == "" {
			st.Warnings.Addf("%s: %s record without %s", base, name, rec.Barcode)
			continue
		}

		var fields stage.Fields
		if rec.Sequence {
			if seq, ok := m.Attrs["sequence"]; ok {
				fields.Set("sequence", seq)
			}
		}
		collectFields(&fields, m.Node, name+"/*")
		for _, extra := range rec.Extra {
			collectFields(&fields, m.Node, extra)
		}

		if err := st.Channel.Emit(barcode, fields, rule.DataSubType); err != nil {
			return err
		}
	}
	return nil
}

// collectFields adds every versioned element matching pattern under its
// display name.
func collectFields(fields *stage.Fields, node *xmltree.Node, pattern string) {
	for m := range xmltree.Query(node, pattern) {
		if _, ok := m.Attrs[rules.VersionMarker]; !ok {
			continue
		}
		name := m.Attrs[rules.DisplayNameAttr]
		if name == "" {
			name = m.Name()
		}
		fields.Set(name, m.Text)
	}
}
