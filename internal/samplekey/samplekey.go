// Package samplekey resolves experiment local identifiers to canonical
// sample keys. Descriptor files are read once per run; SDRF aliases are
// staged on the "targets" port and reloaded by the build pass.
package samplekey

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/stage"
	"github.com/nishad/tcgaimport/internal/tsv"
	"go.uber.org/zap"
)

// TargetsPort is the staged port holding alias -> extract name records.
const TargetsPort = "targets"

const (
	colExtractName   = "Extract Name"
	colMaterialType  = "Material Type"
	colDerivedArray  = "Derived Array Data File"
	colDerivedMatrix = "Derived Array Data Matrix File"
	colDerivedData   = "Derived Data File"
	colHybridization = "Hybridization Name"
	colSampleName    = "Sample Name"
)

// aliasColumn is one SDRF column contributing aliases; stripped columns
// contribute the value without its last extension before the full value.
type aliasColumn struct {
	name  string
	strip bool
}

var aliasColumns = []aliasColumn{
	{colDerivedArray, true},
	{colDerivedMatrix, false},
	{colDerivedData, true},
	{colHybridization, false},
	{colSampleName, false},
}

// Map is alias -> canonical extract name.
type Map map[string]string

// Resolver reads descriptor files into the targets port and the
// descriptor metadata layer.
type Resolver struct {
	channel *stage.Channel
	logger  *zap.Logger
	skips   *errors.SkipCounter
	meta    map[string]any
}

// NewResolver returns a resolver staging aliases on channel.
func NewResolver(channel *stage.Channel, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		channel: channel,
		logger:  logger,
		skips:   errors.NewSkipCounter("sdrf rows"),
		meta:    make(map[string]any),
	}
}

// Meta returns the descriptor metadata collected so far.
func (r *Resolver) Meta() map[string]any {
	return r.meta
}

// Descriptor routes one descriptor file by its suffix. Other files are
// ignored.
func (r *Resolver) Descriptor(path string) error {
	const op errors.Op = "samplekey.Descriptor"

	var parse func(io.Reader) error
	switch {
	case strings.HasSuffix(path, ".sdrf.txt"):
		parse = r.SDRF
	case strings.HasSuffix(path, ".idf.txt"):
		parse = r.IDF
	case strings.HasSuffix(path, "DESCRIPTION.txt"):
		parse = r.Description
	default:
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer f.Close()

	if err := parse(f); err != nil {
		return errors.WrapMsg(op, filepath.Base(path), err)
	}
	return nil
}

// SDRF stages alias -> extract name pairs for every non-control row.
func (r *Resolver) SDRF(in io.Reader) error {
	const op errors.Op = "samplekey.SDRF"

	cr := tsv.NewReader(in)
	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.E(op, errors.KindParse, err, "failed to read header")
	}
	cols := tsv.Index(header)
	positions := tsv.Positions(header)

	extract, ok := cols[colExtractName]
	if !ok {
		return errors.E(op, errors.KindParse, "no Extract Name column")
	}
	material, hasMaterial := cols[colMaterialType]

	required := extract + 1
	if hasMaterial {
		required = max(required, material+1)
	}
	for _, c := range aliasColumns {
		if at := positions[c.name]; len(at) > 0 {
			required = max(required, at[len(at)-1]+1)
		}
	}

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				r.skips.Skip(err, fmt.Sprintf("line %d", line))
				continue
			}
			return errors.E(op, errors.KindIO, err)
		}

		if len(row) < required {
			r.skips.Skip(fmt.Errorf("short row: %d of %d fields", len(row), required), fmt.Sprintf("line %d", line))
			continue
		}
		if hasMaterial && slices.Contains(rules.ControlMaterials, row[material]) {
			continue
		}
		if err := r.emitRow(row, positions, row[extract]); err != nil {
			return errors.Wrap(op, err)
		}
	}

	r.skips.Report(r.logger)
	return nil
}

func (r *Resolver) emitRow(row []string, positions map[string][]int, target string) error {
	var aliases []string
	for _, c := range aliasColumns {
		for _, i := range positions[c.name] {
			v := row[i]
			if c.strip {
				aliases = append(aliases, fileStems(v)...)
			}
			aliases = append(aliases, v)
		}
	}
	aliases = append(aliases, target)

	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		if err := r.channel.Emit(alias, target, TargetsPort); err != nil {
			return err
		}
	}
	return nil
}

// fileStems returns name without its last extension and name up to its
// first dot. Data columns are keyed by the latter.
func fileStems(name string) []string {
	out := []string{strings.TrimSuffix(name, filepath.Ext(name))}
	if i := strings.IndexByte(name, '.'); i >= 0 && name[:i] != out[0] {
		out = append(out, name[:i])
	}
	return out
}

// IDF copies the recognized investigation rows into the metadata layer.
func (r *Resolver) IDF(in io.Reader) error {
	cr := tsv.NewReader(in)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return errors.E(errors.Op("samplekey.IDF"), errors.KindIO, err)
		}
		if len(row) < 2 {
			continue
		}
		if key, ok := rules.IDFFields[row[0]]; ok {
			r.meta[key] = strings.TrimRight(row[1], "\r\n")
		}
	}
}

// Description stores the free text archive description.
func (r *Resolver) Description(in io.Reader) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.E(errors.Op("samplekey.Description"), errors.KindIO, err)
	}
	r.meta["description"] = string(data)
	return nil
}

// LoadTargets reads the staged targets port into a Map. Later records
// for the same alias win. suffix, when set, is removed from targets.
func LoadTargets(path, suffix string) (Map, error) {
	records, err := stage.ReadPort(path)
	if err != nil {
		return nil, errors.E(errors.Op("samplekey.LoadTargets"), errors.KindParse, err)
	}

	out := make(Map, len(records))
	for _, rec := range records {
		var target string
		if err := rec.Decode(&target); err != nil {
			continue
		}
		if suffix != "" {
			target = strings.ReplaceAll(target, suffix, "")
		}
		out[rec.Key] = target
	}
	return out, nil
}
