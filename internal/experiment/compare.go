package experiment

import (
	"context"
	"time"

	"github.com/san-kum/odekit/internal/analysis"
	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/sim"
)

// Comparison is one entry of Compare. Report is nil when the run could
// not be set up; its Elapsed is the wall time of the whole comparison.
type Comparison struct {
	Integrator string
	Report     *Report
	Err        error
}

// Compare runs cfg once per integrator, concurrently. Each run owns its
// stepper, solver and detectors.
func Compare(ctx context.Context, cfg *config.Config, names []string, workers int, opts ...Option) ([]Comparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newRunOptions(opts)
	if cfg.Precision == "float32" {
		return compare[float32](ctx, cfg, names, workers, o)
	}
	return compare[float64](ctx, cfg, names, workers, o)
}

func compare[T dynamo.Scalar](ctx context.Context, cfg *config.Config, names []string, workers int, o runOptions) ([]Comparison, error) {
	cfgs := make([]*config.Config, len(names))
	runs := make([]*prepared[T], len(names))
	jobs := make([]sim.Job[T], len(names))
	for i, name := range names {
		c := cfg.Clone()
		c.Integrator = name
		cfgs[i] = c
		jobs[i] = sim.Job[T]{
			Name: name,
			Build: func() (*sim.Solver[T], dynamo.Equation[T], error) {
				p, err := setup[T](c, o)
				if err != nil {
					return nil, nil, err
				}
				runs[i] = p
				return p.solver, p.model, nil
			},
		}
	}

	start := time.Now()
	results, err := sim.Sweep(ctx, jobs, workers)
	elapsed := time.Since(start)

	out := make([]Comparison, len(results))
	for i, res := range results {
		out[i] = Comparison{Integrator: names[i], Err: res.Err}
		if runs[i] != nil {
			out[i].Report = runs[i].report(cfgs[i], elapsed)
		}
	}
	return out, err
}

// Converge runs cfg at dt, dt/2, ... and fits the observed order of the
// configured integrator. Adaptive settings are ignored.
func Converge(ctx context.Context, cfg *config.Config, levels int, opts ...Option) (analysis.Study, error) {
	if err := cfg.Validate(); err != nil {
		return analysis.Study{}, err
	}
	o := newRunOptions(opts)
	if cfg.Precision == "float32" {
		return converge[float32](ctx, cfg, levels, o)
	}
	return converge[float64](ctx, cfg, levels, o)
}

func converge[T dynamo.Scalar](ctx context.Context, cfg *config.Config, levels int, o runOptions) (analysis.Study, error) {
	base := cfg.Clone()
	base.Adaptive = nil
	base.Events = nil
	base.Dense = false

	probe, err := setup[T](base, o)
	if err != nil {
		return analysis.Study{}, err
	}
	build := func(dt T) (*sim.Solver[T], error) {
		c := base.Clone()
		c.Dt = float64(dt)
		p, err := setup[T](c, o)
		if err != nil {
			return nil, err
		}
		return p.solver, nil
	}
	dt0, err := dynamo.FromFloat64[T](base.Dt)
	if err != nil {
		return analysis.Study{}, err
	}
	return analysis.Convergence[T](ctx, probe.model, build, dt0, levels)
}
