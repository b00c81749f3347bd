package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/integrators"
	"github.com/san-kum/odekit/internal/physics"
)

// Model is what a registry hands out: an equation whose parameters can
// be set by name and which knows a sensible starting point.
type Model[T dynamo.Scalar] interface {
	dynamo.Equation[T]
	dynamo.Configurable
	DefaultState() dynamo.State[T]
}

type StepperFactory[T dynamo.Scalar] func(dim int) (dynamo.Stepper[T], error)

// Registry maps names used in run files to constructors.
type Registry[T dynamo.Scalar] struct {
	equations   map[string]func() Model[T]
	integrators map[string]StepperFactory[T]
}

func NewRegistry[T dynamo.Scalar]() *Registry[T] {
	r := &Registry[T]{
		equations:   make(map[string]func() Model[T]),
		integrators: make(map[string]StepperFactory[T]),
	}

	r.RegisterEquation("oscillator", func() Model[T] { return physics.NewHarmonicOscillator[T](1) })
	r.RegisterEquation("decay", func() Model[T] { return physics.NewDecay[T](-1, 1) })
	r.RegisterEquation("pendulum", func() Model[T] { return physics.NewPendulum[T]() })
	r.RegisterEquation("vanderpol", func() Model[T] { return physics.NewVanDerPol[T]() })
	r.RegisterEquation("lorenz", func() Model[T] { return physics.NewLorenz[T]() })

	r.RegisterIntegrator("euler", func(dim int) (dynamo.Stepper[T], error) { return integrators.NewEuler[T](dim) })
	r.RegisterIntegrator("rk4", func(dim int) (dynamo.Stepper[T], error) { return integrators.NewRK4[T](dim) })
	r.RegisterIntegrator("rk45", func(dim int) (dynamo.Stepper[T], error) { return integrators.NewDormandPrince[T](dim) })
	r.RegisterIntegrator("verlet", func(dim int) (dynamo.Stepper[T], error) { return integrators.NewVerlet[T](dim) })
	r.RegisterIntegrator("leapfrog", func(dim int) (dynamo.Stepper[T], error) { return integrators.NewLeapfrog[T](dim) })

	return r
}

func (r *Registry[T]) RegisterEquation(name string, fn func() Model[T]) {
	r.equations[name] = fn
}

func (r *Registry[T]) RegisterIntegrator(name string, fn StepperFactory[T]) {
	r.integrators[name] = fn
}

func (r *Registry[T]) Equation(name string) (Model[T], error) {
	fn, ok := r.equations[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown equation %q", dynamo.ErrConfiguration, name)
	}
	return fn(), nil
}

func (r *Registry[T]) Stepper(name string, dim int) (dynamo.Stepper[T], error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrConfiguration, name)
	}
	s, err := fn(dim)
	if err != nil {
		return nil, fmt.Errorf("integrator %s: %w", name, err)
	}
	return s, nil
}

func (r *Registry[T]) Equations() []string { return sortedKeys(r.equations) }

func (r *Registry[T]) Integrators() []string { return sortedKeys(r.integrators) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
