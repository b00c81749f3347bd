// Package config holds run files (YAML) and process environment settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odekit/internal/dynamo"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultPrecision = "float64"
	DefaultAtol      = 1e-6
	DefaultRtol      = 1e-6
)

// Config describes one integration run.
type Config struct {
	Equation   string             `yaml:"equation" json:"equation"`
	Integrator string             `yaml:"integrator" json:"integrator"`
	Precision  string             `yaml:"precision" json:"precision"`
	Dt         float64            `yaml:"dt" json:"dt"`
	Duration   float64            `yaml:"duration" json:"duration"`
	InitState  []float64          `yaml:"init_state,omitempty" json:"init_state,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Adaptive   *AdaptiveConfig    `yaml:"adaptive,omitempty" json:"adaptive,omitempty"`
	Dense      bool               `yaml:"dense,omitempty" json:"dense,omitempty"`
	Events     []EventConfig      `yaml:"events,omitempty" json:"events,omitempty"`
	// Component restricts the reported error to one state component.
	Component *int `yaml:"component,omitempty" json:"component,omitempty"`
	// StabilityThreshold enables the stability metric when positive.
	StabilityThreshold float64 `yaml:"stability_threshold,omitempty" json:"stability_threshold,omitempty"`
}

// AdaptiveConfig switches a run to error-controlled stepping.
type AdaptiveConfig struct {
	Controller    string  `yaml:"controller" json:"controller"`
	Atol          float64 `yaml:"atol" json:"atol"`
	Rtol          float64 `yaml:"rtol" json:"rtol"`
	Safety        float64 `yaml:"safety,omitempty" json:"safety,omitempty"`
	MinScale      float64 `yaml:"min_scale,omitempty" json:"min_scale,omitempty"`
	MaxScale      float64 `yaml:"max_scale,omitempty" json:"max_scale,omitempty"`
	MaxRejections int     `yaml:"max_rejections,omitempty" json:"max_rejections,omitempty"`
	MinDt         float64 `yaml:"min_dt,omitempty" json:"min_dt,omitempty"`
	MaxDt         float64 `yaml:"max_dt,omitempty" json:"max_dt,omitempty"`
}

// EventConfig is a threshold crossing on one component.
type EventConfig struct {
	Name      string  `yaml:"name" json:"name"`
	Component int     `yaml:"component" json:"component"`
	Level     float64 `yaml:"level" json:"level"`
	Direction string  `yaml:"direction,omitempty" json:"direction,omitempty"`
	Terminal  bool    `yaml:"terminal,omitempty" json:"terminal,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Equation:   "oscillator",
		Integrator: "rk4",
		Precision:  DefaultPrecision,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
	}
}

// DefaultAdaptive is a PI controller at the default tolerances.
func DefaultAdaptive() *AdaptiveConfig {
	return &AdaptiveConfig{Controller: "pi", Atol: DefaultAtol, Rtol: DefaultRtol}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that does not depend on the equation
// registry. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{dynamo.ErrConfiguration}, args...)...))
	}

	if c.Equation == "" {
		add("equation is required")
	}
	if c.Integrator == "" {
		add("integrator is required")
	}
	switch c.Precision {
	case "", "float32", "float64":
	default:
		add("precision %q, want float32 or float64", c.Precision)
	}
	if !(c.Dt > 0) {
		add("dt must be positive, got %g", c.Dt)
	}
	if !(c.Duration > 0) {
		add("duration must be positive, got %g", c.Duration)
	}
	if c.Component != nil && *c.Component < 0 {
		add("component %d", *c.Component)
	}

	if a := c.Adaptive; a != nil {
		switch a.Controller {
		case "standard", "pi":
		default:
			add("controller %q, want standard or pi", a.Controller)
		}
		if a.Atol < 0 || a.Rtol < 0 || (a.Atol == 0 && a.Rtol == 0) {
			add("tolerances atol=%g rtol=%g", a.Atol, a.Rtol)
		}
		if a.MinDt < 0 || a.MaxDt < 0 || (a.MaxDt > 0 && a.MinDt > a.MaxDt) {
			add("step bounds [%g, %g]", a.MinDt, a.MaxDt)
		}
		if a.MaxRejections < 0 {
			add("max_rejections %d", a.MaxRejections)
		}
	}

	for i, ev := range c.Events {
		if ev.Component < 0 {
			add("event %d: component %d", i, ev.Component)
		}
		switch ev.Direction {
		case "", "either", "rising", "falling", "up", "down":
		default:
			add("event %d: direction %q", i, ev.Direction)
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.InitState = append([]float64(nil), c.InitState...)
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	if c.Adaptive != nil {
		a := *c.Adaptive
		out.Adaptive = &a
	}
	out.Events = append([]EventConfig(nil), c.Events...)
	if c.Component != nil {
		v := *c.Component
		out.Component = &v
	}
	return &out
}
