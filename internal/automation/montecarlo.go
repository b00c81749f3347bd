package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/experiment"
)

// MonteCarloConfig perturbs every initial component uniformly within
// ±Perturbation.
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
	// Bound is the stability threshold; a trial leaving it is unstable.
	Bound float64
}

type MonteCarloResult struct {
	TrialID    int
	InitState  []float64
	FinalState []float64
	// Deviation is the max-abs distance of FinalState from the
	// unperturbed run's final state.
	Deviation float64
	Stable    bool
	Err       error
}

// RunMonteCarlo runs base once unperturbed, then NumTrials perturbed
// copies. Failed trials are recorded as unstable.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig, opts ...experiment.Option) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 || mc.Perturbation < 0 || mc.Bound < 0 {
		return nil, fmt.Errorf("%w: trials=%d perturbation=%g bound=%g",
			dynamo.ErrConfiguration, mc.NumTrials, mc.Perturbation, mc.Bound)
	}

	baseState := base.InitState
	if len(baseState) == 0 {
		model, err := experiment.NewRegistry[float64]().Equation(base.Equation)
		if err != nil {
			return nil, err
		}
		baseState = model.DefaultState().Float64()
	}

	nominalCfg := base.Clone()
	nominalCfg.InitState = append([]float64(nil), baseState...)
	nominal, err := experiment.Run(ctx, nominalCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("nominal run: %w", err)
	}
	nominalFinal := nominal.States[len(nominal.States)-1]

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		initState := make([]float64, len(baseState))
		for i, v := range baseState {
			initState[i] = v + (rng.Float64()-0.5)*2*mc.Perturbation
		}

		cfg := base.Clone()
		cfg.InitState = initState
		if mc.Bound > 0 {
			cfg.StabilityThreshold = mc.Bound
		}

		res := MonteCarloResult{TrialID: trial, InitState: initState}
		rep, err := experiment.Run(ctx, cfg, opts...)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return results, err
			}
			res.Err = err
			res.Deviation = math.Inf(1)
			results = append(results, res)
			continue
		}

		res.FinalState = rep.States[len(rep.States)-1]
		for i, v := range res.FinalState {
			res.Deviation = math.Max(res.Deviation, math.Abs(v-nominalFinal[i]))
		}
		res.Stable = mc.Bound == 0 || rep.Metrics["stability"] == 1
		results = append(results, res)
	}

	return results, nil
}

// MonteCarloStats summarizes trials: stable and unstable counts and the
// largest finite deviation.
func MonteCarloStats(results []MonteCarloResult) (stableCount, unstableCount int, maxDeviation float64) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
		if !math.IsInf(r.Deviation, 0) {
			maxDeviation = math.Max(maxDeviation, r.Deviation)
		}
	}
	return
}
