// Package experiment turns a run file into a configured solver, runs it
// and reports the outcome in float64 regardless of the working precision.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/control"
	"github.com/san-kum/odekit/internal/dense"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/events"
	"github.com/san-kum/odekit/internal/logging"
	"github.com/san-kum/odekit/internal/metrics"
	"github.com/san-kum/odekit/internal/sim"
)

type runOptions struct {
	logger   logging.Logger
	progress func(t, end float64)
}

type Option func(*runOptions)

func WithLogger(l logging.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// WithProgress is called with the time of every accepted point.
func WithProgress(fn func(t, end float64)) Option {
	return func(o *runOptions) { o.progress = fn }
}

func newRunOptions(opts []Option) runOptions {
	o := runOptions{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Run executes cfg in the precision it names. On an integration error
// the partial report is returned together with the error.
func Run(ctx context.Context, cfg *config.Config, opts ...Option) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := newRunOptions(opts)
	if cfg.Precision == "float32" {
		return run[float32](ctx, cfg, o)
	}
	return run[float64](ctx, cfg, o)
}

func run[T dynamo.Scalar](ctx context.Context, cfg *config.Config, o runOptions) (*Report, error) {
	r, err := setup[T](cfg, o)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	err = r.solver.IntegrateContext(ctx, r.model)
	rep := r.report(cfg, time.Since(start))
	if err != nil {
		return rep, fmt.Errorf("%s/%s: %w", cfg.Equation, cfg.Integrator, err)
	}
	return rep, nil
}

// prepared is a solver wired from a config, plus what is needed to
// report on it afterwards.
type prepared[T dynamo.Scalar] struct {
	model     Model[T]
	solver    *sim.Solver[T]
	detectors []*events.Crossing[T]
	metrics   []metrics.Metric[T]
}

type initialSetter[T dynamo.Scalar] interface {
	SetInitial(x dynamo.State[T]) error
}

func setup[T dynamo.Scalar](cfg *config.Config, o runOptions) (*prepared[T], error) {
	reg := NewRegistry[T]()
	model, err := reg.Equation(cfg.Equation)
	if err != nil {
		return nil, err
	}
	for name, v := range cfg.Params {
		if err := model.SetParam(name, v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrConfiguration, cfg.Equation, err)
		}
	}
	dim := model.Dimension()

	x0 := model.DefaultState()
	if len(cfg.InitState) > 0 {
		if x0, err = toState[T](cfg.InitState); err != nil {
			return nil, err
		}
		if err := dynamo.CheckDim("init_state", dim, len(x0)); err != nil {
			return nil, err
		}
		if s, ok := model.(initialSetter[T]); ok {
			if err := s.SetInitial(x0); err != nil {
				return nil, err
			}
		}
	}

	stepper, err := reg.Stepper(cfg.Integrator, dim)
	if err != nil {
		return nil, err
	}

	dt, err := dynamo.FromFloat64[T](cfg.Dt)
	if err != nil {
		return nil, fmt.Errorf("dt: %w", err)
	}
	end, err := dynamo.FromFloat64[T](cfg.Duration)
	if err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}

	p := &prepared[T]{model: model}
	logger := o.logger.With("equation", cfg.Equation, "integrator", cfg.Integrator, "precision", precisionName[T]())
	simOpts := []sim.Option[T]{sim.WithLogger[T](logger)}

	if cfg.Adaptive != nil {
		ctrlOpts, err := adaptiveOptions[T](cfg.Adaptive, stepper)
		if err != nil {
			return nil, err
		}
		simOpts = append(simOpts, ctrlOpts...)
	}

	if cfg.Dense {
		b, err := dense.NewHermiteBuilder[T](dim)
		if err != nil {
			return nil, err
		}
		simOpts = append(simOpts, sim.WithDenseOutput[T](b))
	}

	for i, ev := range cfg.Events {
		if ev.Component >= dim {
			return nil, &dynamo.DimensionError{What: fmt.Sprintf("event %d component", i), Want: dim - 1, Got: ev.Component}
		}
		name := ev.Name
		if name == "" {
			name = fmt.Sprintf("event%d", i)
		}
		eopts := []events.Option[T]{events.WithName[T](name)}
		if ev.Terminal {
			eopts = append(eopts, events.Terminal[T]())
		}
		c := events.Threshold(ev.Component, T(ev.Level), events.ParseDirection(ev.Direction), eopts...)
		p.detectors = append(p.detectors, c)
		simOpts = append(simOpts, sim.WithEventDetector[T](c))
	}

	if h, ok := any(model).(dynamo.Hamiltonian[T]); ok {
		p.metrics = append(p.metrics, metrics.NewEnergyDrift(h))
	}
	if cfg.StabilityThreshold > 0 {
		p.metrics = append(p.metrics, metrics.NewStability[T](cfg.StabilityThreshold))
	}
	for _, m := range p.metrics {
		simOpts = append(simOpts, sim.WithObserver[T](m))
	}

	if o.progress != nil {
		simOpts = append(simOpts, sim.WithObserver[T](progress[T]{fn: o.progress, end: cfg.Duration}))
	}

	p.solver, err = sim.New(dt, end, x0, stepper, simOpts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// adaptiveOptions builds the controller. Embedded pairs control the
// error of their lower-order member, so the controller exponent uses
// order-1 for them.
func adaptiveOptions[T dynamo.Scalar](a *config.AdaptiveConfig, stepper dynamo.Stepper[T]) ([]sim.Option[T], error) {
	order := 4
	if o, ok := stepper.(dynamo.Orderer); ok {
		order = o.Order()
	}
	if _, ok := stepper.(dynamo.ErrorEstimator[T]); ok && order > 1 {
		order--
	}

	atol, err := dynamo.FromFloat64[T](a.Atol)
	if err != nil {
		return nil, fmt.Errorf("atol: %w", err)
	}
	rtol, err := dynamo.FromFloat64[T](a.Rtol)
	if err != nil {
		return nil, fmt.Errorf("rtol: %w", err)
	}

	safety, minScale, maxScale := control.DefaultSafety, control.DefaultMinScale, control.DefaultMaxScale
	if a.Safety > 0 {
		safety = a.Safety
	}
	if a.MinScale > 0 {
		minScale = a.MinScale
	}
	if a.MaxScale > 0 {
		maxScale = a.MaxScale
	}

	var ctrl dynamo.StepSizeController[T]
	switch a.Controller {
	case "standard":
		c, err := control.NewStandard(atol, rtol, order)
		if err != nil {
			return nil, err
		}
		if c, err = c.WithScaling(safety, minScale, maxScale); err != nil {
			return nil, err
		}
		ctrl = c
	case "pi":
		c, err := control.NewPI(atol, rtol, order)
		if err != nil {
			return nil, err
		}
		if c, err = c.WithScaling(safety, minScale, maxScale); err != nil {
			return nil, err
		}
		ctrl = c
	default:
		return nil, fmt.Errorf("%w: unknown controller %q", dynamo.ErrConfiguration, a.Controller)
	}

	opts := []sim.Option[T]{sim.WithController(ctrl)}
	if a.MaxRejections > 0 {
		opts = append(opts, sim.WithMaxRejections[T](a.MaxRejections))
	}
	if a.MinDt > 0 || a.MaxDt > 0 {
		opts = append(opts, sim.WithStepBounds(T(a.MinDt), T(a.MaxDt)))
	}
	return opts, nil
}

func toState[T dynamo.Scalar](vals []float64) (dynamo.State[T], error) {
	s := make(dynamo.State[T], len(vals))
	for i, v := range vals {
		x, err := dynamo.FromFloat64[T](v)
		if err != nil {
			return nil, fmt.Errorf("init_state[%d]: %w", i, err)
		}
		s[i] = x
	}
	return s, nil
}

func precisionName[T dynamo.Scalar]() string {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return "float32"
	}
	return "float64"
}

type progress[T dynamo.Scalar] struct {
	fn  func(t, end float64)
	end float64
}

func (p progress[T]) OnStep(t T, _ dynamo.State[T]) { p.fn(float64(t), p.end) }
