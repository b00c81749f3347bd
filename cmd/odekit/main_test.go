package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/storage"
)

func findCmd(t *testing.T, name string) *cobra.Command {
	t.Helper()
	cmd, _, err := newRootCmd().Find([]string{name})
	require.NoError(t, err)
	return cmd
}

func TestResolveConfigPresetWithOverrides(t *testing.T) {
	cmd := findCmd(t, "run")
	require.NoError(t, cmd.Flags().Set("preset", "reference"))
	require.NoError(t, cmd.Flags().Set("time", "2"))
	require.NoError(t, cmd.Flags().Set("param", "omega=2"))
	require.NoError(t, cmd.Flags().Set("adaptive", "standard"))
	require.NoError(t, cmd.Flags().Set("atol", "1e-9"))

	cfg, err := resolveConfig(cmd, []string{"oscillator"})
	require.NoError(t, err)
	assert.Equal(t, "oscillator", cfg.Equation)
	assert.Equal(t, 2.0, cfg.Duration)
	assert.Equal(t, 2.0, cfg.Params["omega"])
	require.NotNil(t, cfg.Adaptive)
	assert.Equal(t, "standard", cfg.Adaptive.Controller)
	assert.Equal(t, 1e-9, cfg.Adaptive.Atol)
	assert.Equal(t, config.DefaultRtol, cfg.Adaptive.Rtol)

	// presets are handed out as copies
	assert.Nil(t, config.GetPreset("oscillator", "reference").Adaptive)
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := findCmd(t, "run")
	cfg, err := resolveConfig(cmd, []string{"decay"})
	require.NoError(t, err)
	assert.Equal(t, "decay", cfg.Equation)
	assert.Equal(t, "rk4", cfg.Integrator)
	assert.Nil(t, cfg.Adaptive)
}

func TestResolveConfigErrors(t *testing.T) {
	cmd := findCmd(t, "run")
	_, err := resolveConfig(cmd, nil)
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))

	cmd = findCmd(t, "run")
	require.NoError(t, cmd.Flags().Set("preset", "nope"))
	_, err = resolveConfig(cmd, []string{"oscillator"})
	assert.Error(t, err)

	cmd = findCmd(t, "run")
	require.NoError(t, cmd.Flags().Set("param", "omega=fast"))
	_, err = resolveConfig(cmd, []string{"oscillator"})
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))

	cmd = findCmd(t, "run")
	require.NoError(t, cmd.Flags().Set("dt", "-1"))
	_, err = resolveConfig(cmd, []string{"oscillator"})
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := config.DefaultConfig()
	cfg.Equation = "pendulum"
	cfg.InitState = []float64{0.3, 0}
	require.NoError(t, config.Save(path, cfg))

	cmd := findCmd(t, "run")
	require.NoError(t, cmd.Flags().Set("config", path))
	got, err := resolveConfig(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "pendulum", got.Equation)
	assert.Equal(t, []float64{0.3, 0}, got.InitState)
}

func TestRunStoresReport(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetArgs([]string{"run", "oscillator", "--time", "0.5", "--data", dir})
	require.NoError(t, root.Execute())

	runs, err := storage.New(dir).List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "oscillator", runs[0].Equation)
	assert.Equal(t, 51, runs[0].Samples)
	require.NotNil(t, runs[0].MaxError)
}

func TestRunNoSave(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetArgs([]string{"run", "lorenz", "--time", "0.1", "--no-save", "--data", dir})
	require.NoError(t, root.Execute())

	runs, err := storage.New(dir).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"dt=0.1, 0.05", "omega=2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dt", "omega"}, names)
	assert.Equal(t, [][]float64{{0.1, 0.05}, {2}}, ranges)

	_, _, err = parseGrid([]string{"dt"})
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))
	_, _, err = parseGrid([]string{"dt=fast"})
	assert.True(t, errors.Is(err, dynamo.ErrConfiguration))
}
