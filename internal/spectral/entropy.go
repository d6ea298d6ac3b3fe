package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/entropic/internal/dynamo"
)

// DensityFloor clamps ρ before taking its logarithm.
const DensityFloor = 1e-12

// parallelChunk is the minimum number of grid points per worker for
// elementwise maps.
const parallelChunk = 1 << 14

// EntropyResult pairs the entropy of a state with the density it was
// computed from. Step logic threads it forward so ρ is evaluated once.
type EntropyResult struct {
	S      float64
	Rho    []float64
	LogRho []float64
}

// Density returns |ψ|² elementwise.
func Density(psi dynamo.Wavefunction) []float64 {
	rho := make([]float64, len(psi))
	dynamo.ParallelFor(len(psi), parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			v := psi[i]
			rho[i] = real(v)*real(v) + imag(v)*imag(v)
		}
	})
	return rho
}

// Entropy returns S = -∫ρ·ln(max(ρ, DensityFloor)) dx with its density.
func Entropy(psi dynamo.Wavefunction, x []float64) EntropyResult {
	rho := Density(psi)
	logRho := make([]float64, len(rho))
	integrand := make([]float64, len(rho))
	dynamo.ParallelFor(len(rho), parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			logRho[i] = math.Log(math.Max(rho[i], DensityFloor))
			integrand[i] = rho[i] * logRho[i]
		}
	})

	return EntropyResult{
		S:      -Trapezoid(x, integrand),
		Rho:    rho,
		LogRho: logRho,
	}
}

// EntropyForce writes coupling·(logρ + 1)·ψ into dst.
func EntropyForce(dst, psi dynamo.Wavefunction, logRho []float64, coupling float64) {
	dynamo.ParallelFor(len(psi), parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = complex(coupling*(logRho[i]+1), 0) * psi[i]
		}
	})
}

// PotentialEnergy returns ∫ρ·coupling·(logρ + 1) dx using the density
// carried by ent.
func PotentialEnergy(ent EntropyResult, x []float64, coupling float64) float64 {
	f := make([]float64, len(ent.LogRho))
	copy(f, ent.LogRho)
	floats.AddConst(1, f)
	floats.Scale(coupling, f)
	floats.Mul(f, ent.Rho)
	return Trapezoid(x, f)
}

// Moments returns ⟨x⟩ = ∫x·ρ dx and ⟨x²⟩ = ∫x²·ρ dx.
func Moments(rho, x []float64) (mean, meanSq float64) {
	f1 := floats.MulTo(make([]float64, len(rho)), x, rho)
	f2 := floats.MulTo(make([]float64, len(rho)), x, f1)
	return Trapezoid(x, f1), Trapezoid(x, f2)
}
