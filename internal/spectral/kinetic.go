package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/san-kum/entropic/internal/dynamo"
)

// Kinetic returns -½·IFFT(k²·FFT(ψ)).
//
// The operator assumes the periodic boundary implied by the transform. It
// panics if psi and k differ in length.
func Kinetic(psi dynamo.Wavefunction, k []float64) dynamo.Wavefunction {
	if len(psi) != len(k) {
		panic(fmt.Sprintf("spectral: kinetic length mismatch %d != %d", len(psi), len(k)))
	}

	psiK := FFT(psi)
	for i, kv := range k {
		psiK[i] *= complex(kv*kv, 0)
	}

	out := IFFT(psiK)
	cmplxs.Scale(-0.5, out)
	return out
}

// KineticEnergy returns ∫|FFT(ψ)|²·k²/(2m) dk with the trapezoid rule taken
// over grid.K in transform order, including the segment that jumps from the
// largest positive to the most negative wavenumber.
func KineticEnergy(psi dynamo.Wavefunction, grid *dynamo.Grid, mass float64) float64 {
	return TrapezoidOrdered(grid.K, kineticDensity(psi, grid.K, mass))
}

// KineticEnergySorted is KineticEnergy with the quadrature over ascending
// wavenumbers.
func KineticEnergySorted(psi dynamo.Wavefunction, grid *dynamo.Grid, mass float64) float64 {
	f := kineticDensity(psi, grid.K, mass)
	kSorted, order := grid.SortedK()
	sorted := make([]float64, len(order))
	for i, idx := range order {
		sorted[i] = f[idx]
	}
	return Trapezoid(kSorted, sorted)
}

// kineticDensity returns |FFT(ψ)|²·k²/(2m) in transform order. The transform
// is unnormalised.
func kineticDensity(psi dynamo.Wavefunction, k []float64, mass float64) []float64 {
	psiK := FFT(psi)
	f := make([]float64, len(psiK))
	for i, v := range psiK {
		f[i] = (real(v)*real(v) + imag(v)*imag(v)) * k[i] * k[i] / (2 * mass)
	}
	return f
}
