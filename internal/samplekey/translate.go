package samplekey

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/tsv"
)

// LoadUUIDTable reads a rawKey<TAB>barcode file into memory.
// Rows with fewer than two columns are ignored.
func LoadUUIDTable(path string) (map[string]string, error) {
	const op errors.Op = "samplekey.LoadUUIDTable"

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to open uuid table")
	}
	defer f.Close()

	table := make(map[string]string)
	cr := tsv.NewReader(f)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return nil, errors.E(op, errors.KindIO, err)
		}
		if len(row) < 2 {
			continue
		}
		table[row[0]] = row[1]
	}
	return table, nil
}

// Translator maps raw keys through the targets map and then the uuid
// table. Each stage is a single lookup that falls back to its input.
type Translator struct {
	targets Map
	uuids   map[string]string
}

// NewTranslator builds a translator. Either table may be nil.
func NewTranslator(targets Map, uuids map[string]string) *Translator {
	return &Translator{targets: targets, uuids: uuids}
}

// Translate returns the canonical key for raw.
func (t *Translator) Translate(raw string) string {
	key := raw
	if v, ok := t.targets[key]; ok {
		key = v
	}
	if v, ok := t.uuids[key]; ok {
		key = v
	}
	return key
}
