package experiment

import (
	"math"
	"time"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/dynamo"
	"github.com/san-kum/odekit/internal/sim"
)

// Report is the precision-independent outcome of one run.
type Report struct {
	ID        string             `json:"id,omitempty"`
	Config    config.Config      `json:"config"`
	Times     []float64          `json:"times"`
	States    [][]float64        `json:"states"`
	Reference [][]float64        `json:"reference,omitempty"`
	MaxError  *float64           `json:"max_error,omitempty"`
	Stats     sim.Stats          `json:"stats"`
	Events    []Event            `json:"events,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Elapsed   time.Duration      `json:"elapsed"`
}

type Event struct {
	Name     string  `json:"name"`
	Step     int     `json:"step"`
	Time     float64 `json:"time"`
	Located  bool    `json:"located"`
	Terminal bool    `json:"terminal"`
}

// HasReference reports whether any sample has a closed-form counterpart.
func (r *Report) HasReference() bool { return r.Reference != nil }

// Component extracts one state component as a series.
func (r *Report) Component(i int) []float64 {
	out := make([]float64, 0, len(r.States))
	for _, s := range r.States {
		if i < len(s) {
			out = append(out, s[i])
		} else {
			out = append(out, math.NaN())
		}
	}
	return out
}

// ErrorSeries is |x_i - ref_i| per sample for component i. Samples
// without a reference are NaN.
func (r *Report) ErrorSeries(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		out[k] = math.NaN()
		if k < len(r.Reference) && r.Reference[k] != nil && i < len(s) {
			out[k] = math.Abs(s[i] - r.Reference[k][i])
		}
	}
	return out
}

func (p *prepared[T]) report(cfg *config.Config, elapsed time.Duration) *Report {
	tr := p.solver.Trajectory()
	times, states := tr.Float64()
	rep := &Report{
		Config:  *cfg.Clone(),
		Times:   times,
		States:  states,
		Stats:   p.solver.Stats(),
		Elapsed: elapsed,
	}

	if ref, ok := p.solver.ReferenceStates(); ok {
		_, rep.Reference = sim.Trajectory[T]{Times: tr.Times, States: ref}.Float64()
		var opts []sim.ErrorOption
		if cfg.Component != nil {
			opts = append(opts, sim.TrackComponent(*cfg.Component))
		}
		if e, err := sim.MaxAbsoluteError(tr.States, ref, opts...); err == nil {
			v := float64(e)
			rep.MaxError = &v
		}
	}

	for _, ev := range p.solver.Events() {
		rep.Events = append(rep.Events, Event{
			Name:     p.detectors[ev.Detector].Name,
			Step:     ev.Step,
			Time:     float64(ev.Time),
			Located:  ev.HasTime,
			Terminal: ev.Terminal,
		})
	}

	if len(p.metrics) > 0 {
		rep.Metrics = make(map[string]float64, len(p.metrics))
		for _, m := range p.metrics {
			rep.Metrics[m.Name()] = m.Value()
		}
	}
	return rep
}

var _ dynamo.Observer[float64] = progress[float64]{}
