package constraint

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/spectral"
)

func TestChemicalPotential_PlaneWave(t *testing.T) {
	g, err := dynamo.NewGrid(64, 10.0)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}

	k0 := 2 * math.Pi * 2 / g.L
	amp := 1 / math.Sqrt(g.L)
	psi := make(dynamo.Wavefunction, g.N)
	for i, x := range g.X {
		psi[i] = complex(amp, 0) * cmplx.Exp(complex(0, k0*x))
	}

	kin := spectral.Kinetic(psi, g.K)
	force := make(dynamo.Wavefunction, g.N)

	mu, err := ChemicalPotential(psi, kin, force, g.X)
	if err != nil {
		t.Fatalf("mu failed: %v", err)
	}

	// |ψ|² = 1/L integrated over the N-1 trapezoid panels of the open grid
	want := -0.5 * k0 * k0 * (g.L - g.Dx) / g.L
	if math.Abs(mu-want) > 1e-10 {
		t.Errorf("mu = %.12f, want %.12f", mu, want)
	}
}

func TestChemicalPotential_ForceOnly(t *testing.T) {
	x := []float64{0, 1, 2}
	psi := dynamo.Wavefunction{1i, 2, 1}
	kin := make(dynamo.Wavefunction, 3)
	force := dynamo.Wavefunction{2i, 4, -1}

	// integrand Re[conj(psi)*force] = [2, 8, -1]
	mu, err := ChemicalPotential(psi, kin, force, x)
	if err != nil {
		t.Fatalf("mu failed: %v", err)
	}
	if math.Abs(mu-8.5) > 1e-14 {
		t.Errorf("mu = %f, want 8.5", mu)
	}
}

func TestChemicalPotential_Mismatch(t *testing.T) {
	psi := make(dynamo.Wavefunction, 4)
	_, err := ChemicalPotential(psi, make(dynamo.Wavefunction, 3), make(dynamo.Wavefunction, 4), make([]float64, 4))
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
