// Package physics provides a catalogue of equations for odekit.
//
// Each model implements [dynamo.Equation]. Models with a closed-form
// solution also implement [dynamo.ExactSolver], which the solver uses
// to record a reference trajectory:
//
//   - [HarmonicOscillator]: x'' = -ω²x, exact
//   - [Decay]: x' = a·x, exact
//   - [Pendulum]: damped nonlinear pendulum, [dynamo.Hamiltonian]
//   - [VanDerPol]: limit cycle oscillator
//   - [Lorenz]: butterfly attractor
//
// All models implement [dynamo.Configurable] so run files can override
// their parameters by name.
//
// # Energy Conservation
//
//	eq := physics.NewPendulum[float64]()
//	if h, ok := any(eq).(dynamo.Hamiltonian[float64]); ok {
//	    energy := h.Energy(state)
//	}
package physics
