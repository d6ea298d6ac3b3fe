package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNonFinite indicates NaN or Inf in the wavefunction or a diagnostic.
	ErrNonFinite = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrCanceled indicates the simulation was interrupted.
	ErrCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates buffers whose length differs from the grid.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and grid")

	// ErrFinished indicates a step was requested after the last step.
	ErrFinished = errors.New("dynamo: simulation already finished")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Tau     float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (tau=%.4f): %v", e.Step, e.Tau, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
