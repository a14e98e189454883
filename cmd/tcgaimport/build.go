package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nishad/tcgaimport/internal/batch"
	"github.com/nishad/tcgaimport/internal/emit"
	"github.com/nishad/tcgaimport/internal/importer"
	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/rules"
	"github.com/nishad/tcgaimport/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build <request.json>",
	Short: "Build every output of one archive request",
	Long: `Resolve the archives named by the request's provenance, extract them into
a scratch workspace and emit one data file plus JSON sidecar per output.

The workspace is removed after a successful run and kept for inspection
when the run fails.`,
	Example: `  tcgaimport build request.json
  tcgaimport build --sanitize --remove-controls request.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var batchCmd = &cobra.Command{
	Use:   "batch <request.json>...",
	Short: "Build many archive requests concurrently",
	Long: `Run one build per request file with a bounded worker pool. A failing
request does not stop the others; failures are reported at the end.`,
	Example: `  tcgaimport batch --workers 8 requests/*.json`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runBatch,
}

var (
	buildSanitize       bool
	buildRemoveControls bool
	buildOutDir         string
	buildDownload       bool
	buildReport         bool
	batchWorkers        int
)

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, batchCmd} {
		cmd.Flags().BoolVar(&buildSanitize, "sanitize", false, "Drop race and ethnicity from clinical tables")
		cmd.Flags().BoolVar(&buildRemoveControls, "remove-controls", false, "Drop control samples")
		cmd.Flags().StringVarP(&buildOutDir, "output", "o", "", "Output directory (default: from config)")
		cmd.Flags().BoolVar(&buildDownload, "download", false, "Download archives missing from the mirror")
	}
	buildCmd.Flags().BoolVar(&buildReport, "report", false, "Print the resolved request and planned outputs as JSON, then exit")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent builds (default: from config)")
}

// applyBuildFlags layers explicitly set flags over the config file
func applyBuildFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("sanitize") {
		cfg.Build.Sanitize = buildSanitize
	}
	if flags.Changed("remove-controls") {
		cfg.Build.RemoveControls = buildRemoveControls
	}
	if flags.Changed("download") {
		cfg.Mirror.Download = buildDownload
	}
	if buildOutDir != "" {
		cfg.OutputDirectory = buildOutDir
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runBuild(cmd *cobra.Command, args []string) error {
	applyBuildFlags(cmd)

	reqs, err := loadRequests(args)
	if err != nil {
		return err
	}
	if buildReport {
		return printReport(reqs[0])
	}

	im, closeFn, err := newImporter()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()

	var res *importer.Result
	run := func() error {
		var err error
		res, err = im.Run(ctx, reqs[0])
		return err
	}
	if quiet {
		err = run()
	} else {
		err = ui.Run(os.Stderr, "Building "+reqs[0].Basename, run)
	}
	if err != nil {
		if res != nil && res.Workspace != "" {
			printWarning("workspace kept at %s", res.Workspace)
		}
		return err
	}

	printResult(reqs[0], res)
	return nil
}

type reportOutput struct {
	DataSubType string         `json:"dataSubType"`
	Path        string         `json:"path"`
	Metadata    map[string]any `json:"metadata"`
}

type report struct {
	Platform string         `json:"platform"`
	Basename string         `json:"basename"`
	Sources  []string       `json:"sources"`
	Outputs  []reportOutput `json:"outputs"`
}

// printReport shows what a build would do: where each source resolves in
// the mirror and the base metadata of every output.
func printReport(req *models.ArchiveRequest) error {
	platform, err := rules.Lookup(req.Platform)
	if err != nil {
		return err
	}

	f := newFetcher()
	r := report{Platform: req.Platform, Basename: req.Basename, Sources: []string{}}
	for _, u := range req.Provenance.Used {
		path, err := f.Path(u.URL)
		if err != nil {
			return err
		}
		r.Sources = append(r.Sources, path)
	}
	for i := range platform.Rules {
		rule := &platform.Rules[i]
		r.Outputs = append(r.Outputs, reportOutput{
			DataSubType: rule.DataSubType,
			Path:        filepath.Join(cfg.OutputDirectory, rule.Name(req.Basename)),
			Metadata:    emit.DeepMerge(emit.Defaults(rule, req), req.Meta()),
		})
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func runBatch(cmd *cobra.Command, args []string) error {
	applyBuildFlags(cmd)

	reqs, err := loadRequests(args)
	if err != nil {
		return err
	}

	im, closeFn, err := newImporter()
	if err != nil {
		return err
	}
	defer closeFn()

	workers := cfg.Batch.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	ctx, cancel := signalContext()
	defer cancel()

	outcomes := batch.New(im, workers, logger).Run(ctx, reqs)
	for _, o := range outcomes {
		if o.Err != nil {
			printError("%s: %v", o.Request.Basename, o.Err)
			if o.Result != nil && o.Result.Workspace != "" {
				printWarning("workspace kept at %s", o.Result.Workspace)
			}
			continue
		}
		printResult(o.Request, o.Result)
	}

	failed := batch.Failed(outcomes)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d requests failed", len(failed), len(outcomes))
	}
	return nil
}
