// Package constraint computes the Lagrange multiplier that keeps the
// evolution norm-preserving to first order.
package constraint

import (
	"fmt"

	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/spectral"
)

// ChemicalPotential returns μ = ∫Re[ψ*·(K + F)] dx, the projection of the
// update direction K + F onto ψ.
func ChemicalPotential(psi, kinetic, force dynamo.Wavefunction, x []float64) (float64, error) {
	n := len(psi)
	if len(kinetic) != n || len(force) != n || len(x) != n {
		return 0, fmt.Errorf("%w: psi=%d kinetic=%d force=%d x=%d",
			dynamo.ErrDimensionMismatch, n, len(kinetic), len(force), len(x))
	}

	integrand := make([]float64, n)
	for i, p := range psi {
		h := kinetic[i] + force[i]
		// Re[conj(p)·h]
		integrand[i] = real(p)*real(h) + imag(p)*imag(h)
	}
	return spectral.Trapezoid(x, integrand), nil
}
