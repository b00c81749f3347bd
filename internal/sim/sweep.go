package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/odekit/internal/dynamo"
)

// Job builds an independent solver and equation for one sweep run.
// Build is called on the worker goroutine, so steppers, controllers and
// dense builders must not be shared between jobs.
type Job[T dynamo.Scalar] struct {
	Name  string
	Build func() (*Solver[T], dynamo.Equation[T], error)
}

// Result is the outcome of one job. Err is per job; a failing job does
// not cancel the others.
type Result[T dynamo.Scalar] struct {
	Name   string
	Solver *Solver[T]
	Err    error
}

// Sweep runs jobs concurrently with at most workers goroutines. workers
// <= 0 means GOMAXPROCS. Results are returned in job order. The returned
// error is non-nil only when ctx is cancelled.
func Sweep[T dynamo.Scalar](ctx context.Context, jobs []Job[T], workers int) ([]Result[T], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result[T], len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i].Name = job.Name
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			s, eq, err := job.Build()
			if err != nil {
				results[i].Err = fmt.Errorf("%s: %w", job.Name, err)
				return nil
			}
			results[i].Solver = s
			if err := s.IntegrateContext(gctx, eq); err != nil {
				results[i].Err = fmt.Errorf("%s: %w", job.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}
