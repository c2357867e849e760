package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/RectFit/internal/model"
)

// Job is one outline to precompute, identified by the key its result is
// stored under.
type Job struct {
	Key     string
	Outline model.Outline
}

// JobResult is the outcome of one Job. Err holds the fit error, if any.
type JobResult struct {
	Key    string
	Result model.FitResult
	Err    error
}

// PrecomputeAll fits every job with up to workers fits in flight and
// returns the results in job order. Per-job failures are reported in
// JobResult.Err and do not stop the batch. The returned error is set
// only if ctx was cancelled before all jobs started.
//
// All workers share one grid cache, so repeated outlines build their
// grid once.
func PrecomputeAll(ctx context.Context, settings model.FitSettings, jobs []Job, workers int, opts ...Option) ([]JobResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cache := NewGridCache()
	opts = append([]Option{WithCache(cache)}, opts...)

	results := make([]JobResult, len(jobs))
	for i, job := range jobs {
		results[i].Key = job.Key
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := New(settings, opts...).Fit(gctx, job.Outline)
			results[i].Result, results[i].Err = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
