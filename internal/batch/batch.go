// Package batch drives independent archive runs through a bounded
// worker pool.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/nishad/tcgaimport/internal/importer"
	"github.com/nishad/tcgaimport/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 5

// Runner executes one archive request.
type Runner interface {
	Run(ctx context.Context, req *models.ArchiveRequest) (*importer.Result, error)
}

// Outcome is the result of one unit of work.
type Outcome struct {
	Request  *models.ArchiveRequest
	Result   *importer.Result
	Err      error
	Duration time.Duration
}

// Driver runs requests concurrently.
type Driver struct {
	runner  Runner
	workers int
	logger  *zap.Logger
}

// New returns a driver with at most workers concurrent runs.
func New(runner Runner, workers int, logger *zap.Logger) *Driver {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{runner: runner, workers: workers, logger: logger}
}

// Run executes every request and returns one outcome per request, in
// input order. A failed unit does not stop its siblings; cancelling ctx
// stops new units from starting, and those report the context error.
func (d *Driver) Run(ctx context.Context, reqs []*models.ArchiveRequest) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	var mu sync.Mutex
	failed := 0

	var eg errgroup.Group
	eg.SetLimit(d.workers)
	for i, req := range reqs {
		outcomes[i].Request = req
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			start := time.Now()
			res, err := d.runner.Run(ctx, req)
			outcomes[i].Result = res
			outcomes[i].Err = err
			outcomes[i].Duration = time.Since(start)

			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				d.logger.Error("unit failed", zap.String("basename", req.Basename), zap.Error(err))
			}
			return nil
		})
	}
	_ = eg.Wait()

	d.logger.Info("batch complete", zap.Int("units", len(reqs)), zap.Int("failed", failed))
	return outcomes
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
