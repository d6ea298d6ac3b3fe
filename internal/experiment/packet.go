package experiment

import (
	"math"

	"github.com/san-kum/entropic/internal/dynamo"
)

// GaussianPacket samples A·exp(-(x-x0)²/(2σ²))·exp(i·p0·x) on the grid,
// with A = (1/(σ√π))^½ so that the continuum norm is one.
func GaussianPacket(grid *dynamo.Grid, x0, sigma0, p0 float64) dynamo.Wavefunction {
	a := math.Sqrt(1 / (sigma0 * math.Sqrt(math.Pi)))
	psi := make(dynamo.Wavefunction, grid.N)
	for i, x := range grid.X {
		env := a * math.Exp(-(x-x0)*(x-x0)/(2*sigma0*sigma0))
		sin, cos := math.Sincos(p0 * x)
		psi[i] = complex(env*cos, env*sin)
	}
	return psi
}
