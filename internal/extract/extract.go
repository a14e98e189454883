// Package extract parses one raw archive file into the accumulated
// state of a dataSubType. The rule's shape selects the algorithm.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/stage"
	"github.com/nishad/tcgaimport/internal/table"
	"go.uber.org/zap"
)

// State accumulates what the files of one dataSubType contribute.
type State struct {
	Matrix   *table.Matrix
	Segments *table.Segments
	Channel  *stage.Channel // clinical records go to the dataSubType port
	Payload  string         // pass-through source file
	Files    int            // files handed to File

	Warnings *errors.Warnings
	Skips    *errors.SkipCounter
	Logger   *zap.Logger
}

// NewState returns an empty state for rule.
func NewState(rule *rules.Rule, channel *stage.Channel, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := &State{
		Channel:  channel,
		Warnings: &errors.Warnings{},
		Skips:    errors.NewSkipCounter(rule.DataSubType + " rows"),
		Logger:   logger,
	}
	switch rule.Shape {
	case rules.Matrix:
		st.Matrix = table.NewMatrix()
	case rules.Segment:
		st.Segments = &table.Segments{ValueName: rule.ValueName}
	}
	return st
}

// File extracts one file into st. Recoverable anomalies become
// warnings; only I/O failures are returned.
func File(path string, rule *rules.Rule, st *State) error {
	const op errors.Op = "extract.File"
	st.Files++

	if rule.Shape == rules.PassThrough {
		if st.Payload != "" {
			st.Warnings.Addf("%s: replaces earlier payload %s", filepath.Base(path), filepath.Base(st.Payload))
		}
		st.Payload = path
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer f.Close()

	st.Logger.Debug("extracting",
		zap.String("file", filepath.Base(path)),
		zap.String("data_sub_type", rule.DataSubType),
		zap.String("shape", rule.Shape.String()))

	switch rule.Shape {
	case rules.Matrix:
		err = matrixFile(f, path, rule, st)
	case rules.Segment:
		err = segmentFile(f, path, rule, st)
	case rules.Clinical:
		err = clinicalFile(f, path, rule, st)
	default:
		return errors.E(op, errors.KindConfig, fmt.Sprintf("unknown shape %v", rule.Shape))
	}
	if err != nil {
		return errors.WrapMsg(op, filepath.Base(path), err)
	}
	return nil
}

// stem is the basename up to its first dot.
func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
