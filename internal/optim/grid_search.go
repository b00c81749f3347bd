// Package optim searches run settings for the cheapest accurate run.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/experiment"
)

// Objective scores a finished run. Lower is better; ok=false marks the
// run infeasible.
type Objective func(rep *experiment.Report) (score float64, ok bool)

// CheapestWithin scores by right-hand-side evaluations among runs whose
// max error is at most target.
func CheapestWithin(target float64) Objective {
	return func(rep *experiment.Report) (float64, bool) {
		if rep.MaxError == nil || *rep.MaxError > target {
			return 0, false
		}
		return float64(rep.Stats.Evaluations), true
	}
}

// MinError scores by max error.
func MinError() Objective {
	return func(rep *experiment.Report) (float64, bool) {
		if rep.MaxError == nil {
			return 0, false
		}
		return *rep.MaxError, true
	}
}

type Trial struct {
	Params   map[string]float64
	Score    float64
	Feasible bool
	Err      error
}

type Result struct {
	Best   map[string]float64
	Score  float64
	Report *experiment.Report
	Trials []Trial
}

// Found reports whether any trial was feasible.
func (r Result) Found() bool { return r.Best != nil }

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	opts       []experiment.Option
}

func NewGridSearch(params []string, ranges [][]float64, opts ...experiment.Option) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters, %d ranges", dynamo.ErrConfiguration, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", dynamo.ErrConfiguration, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, opts: opts}, nil
}

// Apply sets one named setting on cfg. dt, atol and rtol address the
// run itself; any other name is an equation parameter.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
	case "atol", "rtol":
		if cfg.Adaptive == nil {
			return fmt.Errorf("%w: %s needs an adaptive run", dynamo.ErrConfiguration, name)
		}
		if name == "atol" {
			cfg.Adaptive.Atol = v
		} else {
			cfg.Adaptive.Rtol = v
		}
	default:
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = v
	}
	return nil
}

// Search runs every grid point on a copy of base. Failed runs are
// recorded as trials and skipped. Only context errors abort the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (Result, error) {
	res := Result{Score: math.Inf(1)}
	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &res)
	return res, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	objective Objective,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: copyParams(current)}
		rep, err := g.evaluate(ctx, base, current)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			trial.Err = err
			res.Trials = append(res.Trials, trial)
			return nil
		}

		trial.Score, trial.Feasible = objective(rep)
		res.Trials = append(res.Trials, trial)
		if trial.Feasible && trial.Score < res.Score {
			res.Score = trial.Score
			res.Best = trial.Params
			res.Report = rep
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := copyParams(current)
		next[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, next, base, objective, res); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64) (*experiment.Report, error) {
	cfg := base.Clone()
	for _, name := range g.paramNames {
		if err := Apply(cfg, name, params[name]); err != nil {
			return nil, err
		}
	}
	return experiment.Run(ctx, cfg, g.opts...)
}

func copyParams(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
