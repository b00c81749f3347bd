package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
)

func oscillator() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Duration = 2
	return cfg
}

func TestCheapestStepMeetingTarget(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{0.2, 0.1, 0.05, 0.01}})
	require.NoError(t, err)

	res, err := g.Search(context.Background(), oscillator(), CheapestWithin(1e-6))
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Len(t, res.Trials, 4)

	// 0.1 misses 1e-6 on [0, 2]; 0.01 meets it but costs more
	assert.Equal(t, 0.05, res.Best["dt"])
	require.NotNil(t, res.Report.MaxError)
	assert.LessOrEqual(t, *res.Report.MaxError, 1e-6)
	assert.Equal(t, float64(res.Report.Stats.Evaluations), res.Score)
}

func TestMinErrorOverEquationParameter(t *testing.T) {
	g, err := NewGridSearch([]string{"dt", "omega"}, [][]float64{{0.1, 0.05}, {1, 2}})
	require.NoError(t, err)

	res, err := g.Search(context.Background(), oscillator(), MinError())
	require.NoError(t, err)
	assert.Len(t, res.Trials, 4)
	assert.Equal(t, map[string]float64{"dt": 0.05, "omega": 1}, res.Best)
}

func TestInfeasibleAndFailedTrials(t *testing.T) {
	g, err := NewGridSearch([]string{"mass"}, [][]float64{{1}})
	require.NoError(t, err)

	res, err := g.Search(context.Background(), oscillator(), MinError())
	require.NoError(t, err)
	assert.False(t, res.Found())
	require.Len(t, res.Trials, 1)
	assert.True(t, errors.Is(res.Trials[0].Err, dynamo.ErrConfiguration))

	g, err = NewGridSearch([]string{"dt"}, [][]float64{{0.1}})
	require.NoError(t, err)
	res, err = g.Search(context.Background(), oscillator(), CheapestWithin(1e-30))
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.False(t, res.Trials[0].Feasible)
}

func TestApply(t *testing.T) {
	cfg := oscillator()
	assert.True(t, errors.Is(Apply(cfg, "atol", 1e-9), dynamo.ErrConfiguration))

	cfg.Adaptive = config.DefaultAdaptive()
	require.NoError(t, Apply(cfg, "atol", 1e-9))
	require.NoError(t, Apply(cfg, "rtol", 1e-7))
	require.NoError(t, Apply(cfg, "dt", 0.5))
	require.NoError(t, Apply(cfg, "omega", 3))
	assert.Equal(t, 1e-9, cfg.Adaptive.Atol)
	assert.Equal(t, 1e-7, cfg.Adaptive.Rtol)
	assert.Equal(t, 0.5, cfg.Dt)
	assert.Equal(t, 3.0, cfg.Params["omega"])
}

func TestNewGridSearchValidation(t *testing.T) {
	_, err := NewGridSearch(nil, nil)
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))
	_, err = NewGridSearch([]string{"dt"}, [][]float64{{}})
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))
}

func TestSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{0.1, 0.05}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Search(ctx, oscillator(), MinError())
	assert.ErrorIs(t, err, context.Canceled)
}
