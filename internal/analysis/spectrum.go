package analysis

import (
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/spectral"
)

// MomentumSpectrum returns |FFT(ψ)|² reordered to ascending k, together
// with the matching wavenumbers.
func MomentumSpectrum(psi dynamo.Wavefunction, grid *dynamo.Grid) (k, power []float64) {
	psiK := spectral.FFT(psi)
	kSorted, order := grid.SortedK()

	power = make([]float64, len(order))
	for i, idx := range order {
		v := psiK[idx]
		power[i] = real(v)*real(v) + imag(v)*imag(v)
	}
	k = make([]float64, len(kSorted))
	copy(k, kSorted)
	return k, power
}

// PeakMomentum returns the wavenumber carrying the most spectral weight.
func PeakMomentum(psi dynamo.Wavefunction, grid *dynamo.Grid) float64 {
	k, power := MomentumSpectrum(psi, grid)
	best := 0
	for i := range power {
		if power[i] > power[best] {
			best = i
		}
	}
	return k[best]
}
