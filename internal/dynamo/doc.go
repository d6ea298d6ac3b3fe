// Package dynamo provides the primitives shared by the entropic simulator.
//
// The package defines the spatial discretisation and the state vector the
// integrator evolves:
//
//   - [Grid]: uniform periodic grid with positions and FFT-ordered wavenumbers
//   - [Wavefunction]: complex amplitudes, one per grid point
//   - [SimulationError]: step-scoped error wrapper for aborted runs
//
// # Example
//
//	grid, _ := dynamo.NewGrid(256, 20.0)
//	psi := make(dynamo.Wavefunction, grid.N)
//	if !psi.IsValid() {
//	    // NaN or Inf entered the state
//	}
//
// # Thread Safety
//
// A Grid is immutable after construction and may be shared freely. A
// Wavefunction is a plain slice; whoever owns it is responsible for
// serialising writes.
package dynamo
