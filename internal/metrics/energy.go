package metrics

import (
	"math"

	"github.com/san-kum/odekit/internal/dynamo"
)

// EnergyDrift tracks max |E(x) - E(x0)| / |E(x0)| over the observed
// points. When E(x0) is zero the absolute drift is reported instead.
type EnergyDrift[T dynamo.Scalar] struct {
	name    string
	h       dynamo.Hamiltonian[T]
	initial float64
	current float64
	maxAbs  float64
	samples int
}

func NewEnergyDrift[T dynamo.Scalar](h dynamo.Hamiltonian[T]) *EnergyDrift[T] {
	return &EnergyDrift[T]{name: "energy_drift", h: h}
}

func (e *EnergyDrift[T]) Name() string { return e.name }

func (e *EnergyDrift[T]) OnStep(_ T, x dynamo.State[T]) {
	energy := float64(e.h.Energy(x))
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++
	e.maxAbs = math.Max(e.maxAbs, math.Abs(energy-e.initial))
}

func (e *EnergyDrift[T]) Value() float64 {
	if e.initial == 0 {
		return e.maxAbs
	}
	return e.maxAbs / math.Abs(e.initial)
}

// Final is the signed relative change between the first and last point.
func (e *EnergyDrift[T]) Final() float64 {
	if e.samples == 0 || e.initial == 0 {
		return e.current - e.initial
	}
	return (e.current - e.initial) / math.Abs(e.initial)
}

func (e *EnergyDrift[T]) Reset() {
	e.initial = 0
	e.current = 0
	e.maxAbs = 0
	e.samples = 0
}
