package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odekit/internal/analysis"
	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/experiment"
)

func TestReportRendering(t *testing.T) {
	maxErr := 2.5e-7
	rep := &experiment.Report{
		Config:   *config.DefaultConfig(),
		Times:    []float64{0, 0.5, 1},
		States:   [][]float64{{1, 0}, {0.9, -0.5}, {0.5, -0.8}},
		MaxError: &maxErr,
		Metrics:  map[string]float64{"energy_drift": 1e-10},
		Events:   []experiment.Event{{Name: "half", Step: 2, Time: 0.6931, Located: true, Terminal: true}},
	}

	out := Report(rep)
	assert.Contains(t, out, "oscillator / rk4")
	assert.Contains(t, out, "2.500e-07")
	assert.Contains(t, out, "energy_drift")
	assert.Contains(t, out, "half")
	assert.Contains(t, out, "terminal")

	rep.MaxError = nil
	assert.Contains(t, Report(rep), "no closed form")
}

func TestComparisonRendering(t *testing.T) {
	maxErr := 1e-3
	rows := []experiment.Comparison{
		{Integrator: "euler", Report: &experiment.Report{MaxError: &maxErr}},
		{Integrator: "bogus", Err: errors.New("unknown integrator")},
	}
	out := Comparison(rows)
	assert.Contains(t, out, "euler")
	assert.Contains(t, out, "1.000e-03")
	assert.Contains(t, out, "unknown integrator")
}

func TestStudyRendering(t *testing.T) {
	st := analysis.Study{
		Steps:  []float64{0.1, 0.05},
		Errors: []float64{1.6e-5, 1e-6},
		Ratios: []float64{16},
		Order:  4,
	}
	out := Study(st)
	assert.Contains(t, out, "16.00")
	assert.Contains(t, out, "4.00")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", sparkline([]float64{0, 1}, 2))
	assert.Equal(t, "▁▁▁", sparkline([]float64{3, 3, 3}, 5))
	assert.Empty(t, sparkline(nil, 10))
}

func TestWatchModel(t *testing.T) {
	cancelled := false
	m := newWatchModel(config.DefaultConfig(), func() { cancelled = true })

	next, _ := m.Update(progressMsg{t: 5, end: 10, dt: 0.01, steps: 500})
	m = next.(watchModel)
	assert.Equal(t, 500, m.steps)
	assert.Equal(t, []float64{0.01}, m.history)
	assert.Contains(t, m.View(), "t=5/10")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(watchModel)
	assert.Nil(t, cmd)
	assert.True(t, cancelled)
	assert.True(t, m.stopping)

	runErr := context.Canceled
	next, cmd = m.Update(doneMsg{err: runErr})
	m = next.(watchModel)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
	assert.True(t, m.done)
	assert.ErrorIs(t, m.err, context.Canceled)
	assert.Contains(t, m.View(), "failed")
}

func TestWatchModelHistoryBounded(t *testing.T) {
	m := newWatchModel(config.DefaultConfig(), func() {})
	for i := 0; i < historyLen+10; i++ {
		next, _ := m.Update(progressMsg{t: float64(i), end: 100, dt: 1, steps: i})
		m = next.(watchModel)
	}
	assert.Len(t, m.history, historyLen)
}
