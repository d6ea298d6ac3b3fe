package spectral

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// Trapezoid integrates samples f over the ascending nodes x.
func Trapezoid(x, f []float64) float64 {
	return integrate.Trapezoidal(x, f)
}

// TrapezoidOrdered applies the trapezoid rule to nodes in the order given.
// Segments where x decreases contribute with negative width.
func TrapezoidOrdered(x, f []float64) float64 {
	if len(x) != len(f) {
		panic("spectral: trapezoid length mismatch")
	}
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += 0.5 * (x[i] - x[i-1]) * (f[i] + f[i-1])
	}
	return sum
}

// Norm returns ∫|ψ|² dx.
func Norm(psi []complex128, x []float64) float64 {
	return Trapezoid(x, Density(psi))
}

// Normalize divides psi in place by √∫|ψ|² dx and returns the norm it had
// before rescaling. A zero or non-finite norm propagates into psi.
func Normalize(psi []complex128, x []float64) float64 {
	n := Norm(psi, x)
	s := complex(math.Sqrt(n), 0)
	for i := range psi {
		psi[i] /= s
	}
	return n
}
