package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry[float64]()
	assert.Equal(t, []string{"decay", "lorenz", "oscillator", "pendulum", "vanderpol"}, r.Equations())
	assert.Equal(t, []string{"euler", "leapfrog", "rk4", "rk45", "verlet"}, r.Integrators())

	_, err := r.Equation("nbody")
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
	_, err = r.Stepper("midpoint", 2)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
	_, err = r.Stepper("verlet", 3)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestRunOscillator(t *testing.T) {
	cfg := config.GetPreset("oscillator", "reference")
	require.NotNil(t, cfg)

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, rep.Times, 1001)
	assert.True(t, rep.HasReference())
	require.NotNil(t, rep.MaxError)
	assert.Less(t, *rep.MaxError, 1e-3)
	assert.Equal(t, 1000, rep.Stats.Steps)
	assert.Contains(t, rep.Metrics, "energy_drift")
	assert.Less(t, rep.Metrics["energy_drift"], 1e-6)
}

func TestRunFloat32(t *testing.T) {
	cfg := config.GetPreset("oscillator", "reference")
	cfg.Precision = "float32"
	cfg.Duration = 2

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, rep.MaxError)
	assert.Less(t, *rep.MaxError, 1e-3)
	assert.Equal(t, "float32", rep.Config.Precision)
}

func TestRunInitStateAnchorsReference(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 1
	cfg.InitState = []float64{0, 3}
	cfg.Params = map[string]float64{"omega": 2}

	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, rep.MaxError)
	assert.Less(t, *rep.MaxError, 1e-6)
	assert.Equal(t, []float64{0, 3}, rep.Reference[0])
}

func TestRunTerminalEvent(t *testing.T) {
	cfg := config.GetPreset("decay", "half_life")
	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, rep.Events, 1)
	ev := rep.Events[0]
	assert.Equal(t, "half", ev.Name)
	assert.True(t, ev.Terminal)
	assert.True(t, ev.Located)
	assert.InDelta(t, math.Ln2, ev.Time, 1e-7)
	assert.Less(t, rep.Times[len(rep.Times)-1], 0.71)
}

func TestRunAdaptive(t *testing.T) {
	cfg := config.GetPreset("oscillator", "adaptive")
	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 20.0, rep.Times[len(rep.Times)-1])
	require.NotNil(t, rep.MaxError)
	assert.Less(t, *rep.MaxError, 1e-5)
	// x(t) = cos t falls through zero at π/2 + 2πk, three times in [0, 20].
	assert.Len(t, rep.Events, 3)
}

func TestRunNoReference(t *testing.T) {
	cfg := config.GetPreset("lorenz", "butterfly")
	cfg.Duration = 1
	rep, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, rep.HasReference())
	assert.Nil(t, rep.MaxError)
	assert.Equal(t, 1.0, rep.Metrics["stability"])
}

func TestRunConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"unknown equation", func(c *config.Config) { c.Equation = "nbody" }, dynamo.ErrConfiguration},
		{"unknown param", func(c *config.Config) { c.Params = map[string]float64{"mass": 1} }, dynamo.ErrConfiguration},
		{"state length", func(c *config.Config) { c.InitState = []float64{1, 2, 3} }, dynamo.ErrDimensionMismatch},
		{"event component", func(c *config.Config) { c.Events = []config.EventConfig{{Component: 2}} }, dynamo.ErrDimensionMismatch},
		{"float32 overflow", func(c *config.Config) {
			c.Precision = "float32"
			c.InitState = []float64{1e300, 0}
		}, dynamo.ErrLiteralConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			_, err := Run(context.Background(), cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunProgress(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 0.1
	var calls int
	var last float64
	_, err := Run(context.Background(), cfg, WithProgress(func(t, end float64) {
		calls++
		last = t
	}))
	require.NoError(t, err)
	assert.Equal(t, 11, calls)
	assert.InDelta(t, 0.1, last, 1e-12)
}

func TestCompare(t *testing.T) {
	cfg := config.GetPreset("oscillator", "reference")
	cfg.Duration = 2

	res, err := Compare(context.Background(), cfg, []string{"euler", "rk4", "bogus", "verlet"}, 2)
	require.NoError(t, err)
	require.Len(t, res, 4)

	assert.NoError(t, res[0].Err)
	assert.NoError(t, res[1].Err)
	assert.ErrorIs(t, res[2].Err, dynamo.ErrConfiguration)
	assert.Nil(t, res[2].Report)
	assert.Equal(t, "verlet", res[3].Report.Config.Integrator)

	assert.Less(t, *res[1].Report.MaxError, *res[3].Report.MaxError)
	assert.Less(t, *res[3].Report.MaxError, *res[0].Report.MaxError)
}

func TestConverge(t *testing.T) {
	cfg := config.GetPreset("oscillator", "reference")
	cfg.Duration = 2
	cfg.Dt = 0.1

	st, err := Converge(context.Background(), cfg, 4)
	require.NoError(t, err)
	assert.InDelta(t, 4, st.Order, 0.3)

	cfg.Equation = "vanderpol"
	cfg.InitState = nil
	_, err = Converge(context.Background(), cfg, 4)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}
