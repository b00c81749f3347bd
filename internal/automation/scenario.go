// Package automation runs scripted batches of integrations and Monte
// Carlo perturbation studies.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/experiment"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Preset, when set, names a preset of
// Config.Equation and the remaining fields override it.
type ScenarioStep struct {
	Name          string `yaml:"name"`
	Preset        string `yaml:"preset,omitempty"`
	config.Config `yaml:",inline"`
}

// Outcome is the result of one step. Report is nil when the step could
// not be set up.
type Outcome struct {
	Name   string
	Report *experiment.Report
	Err    error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrConfiguration, scenario.Name)
	}
	return &scenario, nil
}

// Resolve merges the step over its preset and the defaults.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Equation, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %s/%s", dynamo.ErrConfiguration, s.Equation, s.Preset)
		}
	}

	over := s.Config
	if over.Equation != "" {
		cfg.Equation = over.Equation
	}
	if over.Integrator != "" {
		cfg.Integrator = over.Integrator
	}
	if over.Precision != "" {
		cfg.Precision = over.Precision
	}
	if over.Dt != 0 {
		cfg.Dt = over.Dt
	}
	if over.Duration != 0 {
		cfg.Duration = over.Duration
	}
	if over.InitState != nil {
		cfg.InitState = append([]float64(nil), over.InitState...)
	}
	for k, v := range over.Params {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[k] = v
	}
	if over.Adaptive != nil {
		a := *over.Adaptive
		cfg.Adaptive = &a
	}
	if over.Dense {
		cfg.Dense = true
	}
	if over.Events != nil {
		cfg.Events = append([]config.EventConfig(nil), over.Events...)
	}
	if over.Component != nil {
		c := *over.Component
		cfg.Component = &c
	}
	if over.StabilityThreshold != 0 {
		cfg.StabilityThreshold = over.StabilityThreshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order. A failing step is recorded
// and the batch continues; only cancellation stops it early.
func RunScenario(ctx context.Context, scenario *Scenario, onStep func(i int, o Outcome), opts ...experiment.Option) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		out := Outcome{Name: name}

		cfg, err := step.Resolve()
		if err != nil {
			out.Err = fmt.Errorf("%s: %w", name, err)
		} else {
			out.Report, out.Err = experiment.Run(ctx, cfg, opts...)
		}

		outcomes = append(outcomes, out)
		if onStep != nil {
			onStep(i, out)
		}
	}

	return outcomes, nil
}
