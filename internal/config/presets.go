package config

import "sort"

func intPtr(v int) *int { return &v }

var Presets = map[string]map[string]*Config{
	"oscillator": {
		"reference": {
			Equation: "oscillator", Integrator: "rk4", Dt: 0.01, Duration: 10.0,
			InitState: []float64{1, 0},
		},
		"fast": {
			Equation: "oscillator", Integrator: "rk4", Dt: 0.01, Duration: 10.0,
			InitState: []float64{1, 0}, Params: map[string]float64{"omega": 5},
		},
		"adaptive": {
			Equation: "oscillator", Integrator: "rk45", Dt: 0.1, Duration: 20.0,
			InitState: []float64{1, 0},
			Adaptive:  &AdaptiveConfig{Controller: "pi", Atol: 1e-8, Rtol: 1e-8},
			Dense:     true,
			Events:    []EventConfig{{Name: "zero", Component: 0, Level: 0, Direction: "falling"}},
		},
		"symplectic": {
			Equation: "oscillator", Integrator: "verlet", Dt: 0.05, Duration: 100.0,
			InitState: []float64{1, 0},
		},
	},
	"decay": {
		"half_life": {
			Equation: "decay", Integrator: "rk4", Dt: 0.01, Duration: 5.0,
			InitState: []float64{1}, Params: map[string]float64{"rate": -1},
			Dense:     true,
			Events:    []EventConfig{{Name: "half", Component: 0, Level: 0.5, Direction: "falling", Terminal: true}},
		},
		"stiff": {
			Equation: "decay", Integrator: "rk4", Dt: 0.1, Duration: 2.0,
			InitState: []float64{1}, Params: map[string]float64{"rate": -50},
			Adaptive:  &AdaptiveConfig{Controller: "standard", Atol: 1e-6, Rtol: 1e-6},
		},
	},
	"pendulum": {
		"small": {
			Equation: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: []float64{0.2, 0.0},
		},
		"large": {
			Equation: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: []float64{2.5, 0.0},
		},
		"spinning": {
			Equation: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 30.0,
			InitState: []float64{0.1, 8.0},
		},
	},
	"vanderpol": {
		"relaxation": {
			Equation: "vanderpol", Integrator: "rk45", Dt: 0.05, Duration: 50.0,
			InitState: []float64{2, 0}, Params: map[string]float64{"mu": 5},
			Adaptive:  &AdaptiveConfig{Controller: "pi", Atol: 1e-6, Rtol: 1e-6},
		},
	},
	"lorenz": {
		"butterfly": {
			Equation: "lorenz", Integrator: "rk4", Dt: 0.005, Duration: 40.0,
			InitState: []float64{1, 1, 1}, Component: intPtr(0), StabilityThreshold: 100,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(equation, preset string) *Config {
	presets, ok := Presets[equation]
	if !ok {
		return nil
	}
	cfg, ok := presets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Precision == "" {
		out.Precision = DefaultPrecision
	}
	return out
}

// ListPresets returns the preset names of an equation in sorted order.
func ListPresets(equation string) []string {
	presets, ok := Presets[equation]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
