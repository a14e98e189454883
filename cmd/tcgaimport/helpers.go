package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nishad/tcgaimport/internal/catalog"
	"github.com/nishad/tcgaimport/internal/emit"
	"github.com/nishad/tcgaimport/internal/fetcher"
	"github.com/nishad/tcgaimport/internal/importer"
	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/samplekey"
)

// Color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// stdout is swapped out by tests
var stdout io.Writer = os.Stdout

func isTerminal() bool {
	f, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func colorize(color, text string) string {
	if !noColor && isTerminal() && os.Getenv("NO_COLOR") == "" {
		return color + text + colorReset
	}
	return text
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorRed, "✗"), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, "%s %s\n", colorize(colorGreen, "✓"), fmt.Sprintf(format, args...))
	}
}

func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintln(stdout, colorize(colorCyan, fmt.Sprintf(format, args...)))
	}
}

func printWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorYellow, "⚠"), fmt.Sprintf(format, args...))
}

// loadRequests reads every request file, failing on the first bad one
func loadRequests(files []string) ([]*models.ArchiveRequest, error) {
	reqs := make([]*models.ArchiveRequest, 0, len(files))
	for _, f := range files {
		req, err := models.LoadRequest(f)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func newFetcher() *fetcher.Fetcher {
	return fetcher.New(fetcher.Config{
		Mirror:   cfg.Mirror.Path,
		Download: cfg.Mirror.Download,
		Logger:   logger,
	})
}

// newImporter wires an importer from the loaded configuration. The
// returned close func releases the catalog when one was opened.
func newImporter() (*importer.Importer, func(), error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	var uuids map[string]string
	if cfg.Build.UUIDTable != "" {
		var err error
		uuids, err = samplekey.LoadUUIDTable(cfg.Build.UUIDTable)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded uuid table")
	}

	var recorder emit.Recorder
	closeFn := func() {}
	if cfg.Catalog.Enabled {
		cat, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return nil, nil, err
		}
		recorder = cat
		closeFn = func() { cat.Close() }
	}

	im := importer.New(importer.Config{
		WorkDir:        cfg.WorkDirectory,
		OutDir:         cfg.OutputDirectory,
		Sanitize:       cfg.Build.Sanitize,
		RemoveControls: cfg.Build.RemoveControls,
		UUIDs:          uuids,
		ClinicalTypes:  cfg.Build.ClinicalTypes,
	}, newFetcher(), recorder, logger)

	return im, closeFn, nil
}

func printResult(req *models.ArchiveRequest, res *importer.Result) {
	printSuccess("%s: %d artifacts", req.Basename, len(res.Artifacts))
	for _, a := range res.Artifacts {
		line := fmt.Sprintf("  %s", a.DataPath)
		if a.Warnings > 0 {
			line += colorize(colorYellow, fmt.Sprintf(" (%d warnings)", a.Warnings))
		}
		printInfo("%s", line)
	}
	for _, dst := range res.Empty {
		printInfo("%s", colorize(colorGray, "  "+dst+": no data"))
	}
}
