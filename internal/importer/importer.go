// Package importer runs one archive request end to end: resolve and
// extract the archives, read the descriptor files, then extract,
// assemble and emit every dataSubType of the platform.
package importer

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/nishad/tcgaimport/internal/assemble"
	"github.com/nishad/tcgaimport/internal/emit"
	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/extract"
	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/samplekey"
	"github.com/nishad/tcgaimport/internal/scanner"
	"github.com/nishad/tcgaimport/internal/stage"
	"github.com/nishad/tcgaimport/internal/workspace"
	"go.uber.org/zap"
)

// Source resolves a provenance URL to a local archive.
type Source interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// Config is the immutable per-importer configuration.
type Config struct {
	WorkDir        string
	OutDir         string
	Sanitize       bool
	RemoveControls bool
	UUIDs          map[string]string // optional rawKey -> barcode table
	ClinicalTypes  []string          // empty builds every clinical type
	NewRunID       func() string     // nil uses random UUIDs
}

// Importer builds artifacts from archive requests. It holds no per-run
// state and may serve concurrent runs.
type Importer struct {
	cfg      Config
	source   Source
	recorder emit.Recorder
	logger   *zap.Logger
}

// New creates an importer. recorder may be nil.
func New(cfg Config, source Source, recorder emit.Recorder, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NewRunID == nil {
		cfg.NewRunID = uuid.NewString
	}
	return &Importer{cfg: cfg, source: source, recorder: recorder, logger: logger}
}

// Result summarizes one run.
type Result struct {
	RunID     string
	Artifacts []*models.Artifact
	Empty     []string // dataSubTypes that produced no table
	Workspace string   // kept only when the run failed
}

// Run builds every output of req. The workspace is removed when the run
// succeeds and kept for inspection otherwise.
func (im *Importer) Run(ctx context.Context, req *models.ArchiveRequest) (*Result, error) {
	const op errors.Op = "importer.Run"

	platform, err := rules.Lookup(req.Platform)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	im.checkClinicalTypes(platform)

	archives := make([]string, 0, len(req.Provenance.Used))
	for _, u := range req.Provenance.Used {
		path, err := im.source.Resolve(ctx, u.URL)
		if err != nil {
			return nil, errors.Wrap(op, err)
		}
		archives = append(archives, path)
	}

	res := &Result{RunID: im.cfg.NewRunID()}
	logger := im.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("basename", req.Basename),
		zap.String("platform", req.Platform))

	ws, err := workspace.New(im.cfg.WorkDir, res.RunID)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}

	if err := im.run(ctx, req, platform, archives, ws, res, logger); err != nil {
		res.Workspace = ws.Dir
		logger.Error("run failed, workspace kept", zap.String("workspace", ws.Dir), zap.Error(err))
		return res, errors.Wrap(op, err)
	}

	if err := ws.Remove(); err != nil {
		logger.Warn("failed to remove workspace", zap.String("workspace", ws.Dir), zap.Error(err))
	}
	logger.Info("run complete", zap.Int("artifacts", len(res.Artifacts)))
	return res, nil
}

func (im *Importer) run(ctx context.Context, req *models.ArchiveRequest, platform *rules.PlatformSpec,
	archives []string, ws *workspace.Workspace, res *Result, logger *zap.Logger) error {

	for _, archive := range archives {
		logger.Info("extracting archive", zap.String("archive", filepath.Base(archive)))
		if err := ws.Extract(ctx, archive); err != nil {
			return err
		}
	}

	tree := scanner.New(ws.TreeDir())
	channel := stage.NewChannel(ws.StageDir())
	defer channel.Close()

	// Phase 1: descriptors.
	resolver := samplekey.NewResolver(channel, logger)
	descriptors, err := tree.Descriptors()
	if err != nil {
		return err
	}
	for _, path := range descriptors {
		if err := resolver.Descriptor(path); err != nil {
			return err
		}
	}
	if err := channel.Close(); err != nil {
		return err
	}
	targets, err := samplekey.LoadTargets(channel.Path(samplekey.TargetsPort), platform.TargetSuffix)
	if err != nil {
		return err
	}
	logger.Debug("descriptors read", zap.Int("descriptors", len(descriptors)), zap.Int("aliases", len(targets)))

	opts := assemble.Options{
		Translator:     samplekey.NewTranslator(targets, im.cfg.UUIDs),
		RemoveControls: im.cfg.RemoveControls,
		Sanitize:       im.cfg.Sanitize,
	}
	emitter := emit.New(im.cfg.OutDir, req,
		emit.WithRecorder(im.recorder),
		emit.WithRunID(res.RunID),
		emit.WithLogger(logger))

	// Phase 2: one pass per dataSubType.
	for i := range platform.Rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		rule := &platform.Rules[i]
		if rule.Shape == rules.Clinical && !im.clinicalEnabled(rule.DataSubType) {
			logger.Debug("clinical type disabled", zap.String("data_sub_type", rule.DataSubType))
			continue
		}

		artifact, err := im.build(ctx, rule, tree, channel, ws, opts, emitter, resolver.Meta(), logger)
		if err != nil {
			return err
		}
		if artifact == nil {
			res.Empty = append(res.Empty, rule.DataSubType)
			continue
		}
		res.Artifacts = append(res.Artifacts, artifact)
	}
	return nil
}

// build extracts, assembles and emits one dataSubType. It returns nil
// when nothing was produced.
func (im *Importer) build(ctx context.Context, rule *rules.Rule, tree *scanner.Scanner, channel *stage.Channel,
	ws *workspace.Workspace, opts assemble.Options, emitter *emit.Emitter, descriptor map[string]any,
	logger *zap.Logger) (*models.Artifact, error) {

	logger = logger.With(zap.String("data_sub_type", rule.DataSubType))

	files, err := tree.DataFiles(rule)
	if err != nil {
		return nil, err
	}

	st := extract.NewState(rule, channel, logger)
	for _, path := range files {
		if err := extract.File(path, rule, st); err != nil {
			return nil, err
		}
	}
	st.Skips.Report(logger)

	src := st.Payload
	if rule.Shape != rules.PassThrough {
		src = filepath.Join(ws.Dir, rule.DataSubType+".table")
		ok, err := assemble.Write(src, rule, st, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			src = ""
		}
	}
	if src == "" {
		logger.Warn("no output produced",
			zap.Int("files", len(files)),
			zap.Strings("warnings", st.Warnings.Messages()))
		return nil, nil
	}

	return emitter.Emit(ctx, rule, descriptor, src, st.Warnings.Messages())
}

func (im *Importer) clinicalEnabled(dataSubType string) bool {
	return len(im.cfg.ClinicalTypes) == 0 || slices.Contains(im.cfg.ClinicalTypes, dataSubType)
}

// checkClinicalTypes warns about restriction entries no rule answers to.
// The advertised output name "drugs" is one of them: the drug rule is
// keyed "drug".
func (im *Importer) checkClinicalTypes(platform *rules.PlatformSpec) {
	if platform.Shape() != rules.Clinical {
		return
	}
	for _, t := range im.cfg.ClinicalTypes {
		if _, ok := platform.Rule(t); !ok {
			im.logger.Warn("clinical type matches no rule and builds nothing", zap.String("type", t))
		}
	}
}
