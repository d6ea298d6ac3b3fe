package dynamo

import (
	"fmt"
	"math"
	"sort"
)

// Grid is a uniform periodic grid on [-L/2, L/2).
type Grid struct {
	N  int
	L  float64
	Dx float64

	// X holds the N sample positions in ascending order.
	X []float64
	// K holds the angular wavenumbers in FFT order (2π·fftfreq(N, Dx)).
	K []float64

	kOrder  []int
	kSorted []float64
}

// NewGrid builds the position and wavenumber axes for n points over length.
func NewGrid(n int, length float64) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2 points, got %d", ErrParameterBounds, n)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, fmt.Errorf("%w: grid length must be positive and finite, got %g", ErrParameterBounds, length)
	}

	dx := length / float64(n)
	g := &Grid{
		N:  n,
		L:  length,
		Dx: dx,
		X:  make([]float64, n),
		K:  make([]float64, n),
	}

	for j := range g.X {
		g.X[j] = -length/2 + float64(j)*dx
	}

	// fftfreq: [0, 1, ..., ceil(n/2)-1, -floor(n/2), ..., -1] / (n*dx)
	half := (n + 1) / 2
	scale := 2 * math.Pi / (float64(n) * dx)
	for m := 0; m < n; m++ {
		f := m
		if m >= half {
			f = m - n
		}
		g.K[m] = float64(f) * scale
	}

	g.kOrder = make([]int, n)
	for i := range g.kOrder {
		g.kOrder[i] = i
	}
	sort.SliceStable(g.kOrder, func(a, b int) bool { return g.K[g.kOrder[a]] < g.K[g.kOrder[b]] })
	g.kSorted = make([]float64, n)
	for i, idx := range g.kOrder {
		g.kSorted[i] = g.K[idx]
	}

	return g, nil
}

// SortedK returns the wavenumbers in ascending order together with the
// permutation that maps ascending position to FFT index. Both slices are
// shared; callers must not modify them.
func (g *Grid) SortedK() ([]float64, []int) {
	return g.kSorted, g.kOrder
}

// KMax returns the largest |k| on the grid.
func (g *Grid) KMax() float64 {
	return math.Max(math.Abs(g.kSorted[0]), math.Abs(g.kSorted[g.N-1]))
}
