package dynamo

import (
	"math"
)

// Wavefunction holds one complex amplitude per grid point.
type Wavefunction []complex128

func (w Wavefunction) Clone() Wavefunction {
	c := make(Wavefunction, len(w))
	copy(c, w)
	return c
}

// IsValid reports whether every real and imaginary part is finite.
func (w Wavefunction) IsValid() bool {
	for _, v := range w {
		if !Finite(real(v)) || !Finite(imag(v)) {
			return false
		}
	}
	return true
}

// Finite reports whether v is neither NaN nor Inf.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllFinite reports whether every value is finite.
func AllFinite(vs ...float64) bool {
	for _, v := range vs {
		if !Finite(v) {
			return false
		}
	}
	return true
}
