// Package emit writes finished tables to the output directory together
// with their JSON metadata and warning sidecars.
package emit

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/rules"
	"go.uber.org/zap"
)

// Recorder stores emitted artifacts. The catalog implements it.
type Recorder interface {
	Record(ctx context.Context, a *models.Artifact) error
}

// Emitter writes the artifacts of one archive run.
type Emitter struct {
	outDir   string
	req      *models.ArchiveRequest
	runID    string
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithRecorder records every artifact after its files are written.
func WithRecorder(r Recorder) Option {
	return func(e *Emitter) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRunID tags artifacts with the run that produced them.
func WithRunID(id string) Option {
	return func(e *Emitter) { e.runID = id }
}

// New returns an emitter writing into outDir.
func New(outDir string, req *models.ArchiveRequest, opts ...Option) *Emitter {
	e := &Emitter{
		outDir: outDir,
		req:    req,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit copies src to the rule's output path while hashing it, then
// writes the metadata sidecar and, when warnings exist, the error
// sidecar. descriptor is the metadata gathered from the archive's
// descriptor files.
func (e *Emitter) Emit(ctx context.Context, rule *rules.Rule, descriptor map[string]any, src string, warnings []string) (*models.Artifact, error) {
	const op errors.Op = "emit.Emit"

	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to create output directory")
	}

	dataPath := filepath.Join(e.outDir, rule.Name(e.req.Basename))
	sum, err := copyHashed(dataPath, src)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, fmt.Sprintf("failed to write %s", filepath.Base(dataPath)))
	}

	meta := DeepMerge(Defaults(rule, e.req), descriptor)
	meta = DeepMerge(meta, e.req.Meta())
	annotations, ok := meta["annotations"].(map[string]any)
	if !ok {
		annotations = make(map[string]any)
		meta["annotations"] = annotations
	}
	annotations["md5"] = sum

	metaPath := dataPath + ".json"
	if err := writeJSON(metaPath, meta); err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to write metadata")
	}

	artifact := &models.Artifact{
		RunID:       e.runID,
		Basename:    e.req.Basename,
		Platform:    e.req.Platform,
		DataSubType: rule.DataSubType,
		Name:        filepath.Base(dataPath),
		DataPath:    dataPath,
		MetaPath:    metaPath,
		MD5:         sum,
		Warnings:    len(warnings),
		Metadata:    meta,
		CreatedAt:   e.now().UTC(),
	}

	if len(warnings) > 0 {
		artifact.ErrorPath = ErrorPath(e.outDir, e.req.Basename, rule.DataSubType)
		if err := writeLines(artifact.ErrorPath, warnings); err != nil {
			return nil, errors.E(op, errors.KindIO, err, "failed to write error sidecar")
		}
	}

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, artifact); err != nil {
			return nil, errors.Wrap(op, err)
		}
	}

	e.logger.Info("artifact emitted",
		zap.String("name", artifact.Name),
		zap.String("md5", sum),
		zap.Int("warnings", len(warnings)))
	return artifact, nil
}

// ErrorPath is the warning sidecar of one dataSubType.
func ErrorPath(outDir, basename, dataSubType string) string {
	return filepath.Join(outDir, basename+"."+dataSubType+".error")
}

// Digest returns the hex MD5 of a file's contents.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyHashed streams src into dst and returns the hex MD5 of the bytes
// written.
func copyHashed(dst, src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	h := md5.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
