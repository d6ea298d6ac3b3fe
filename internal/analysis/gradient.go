package analysis

import (
	"math"

	"github.com/san-kum/entropic/internal/sim"
)

// Gradient differentiates samples y spaced h apart.
//
// Interior points use central differences, the two ends one-sided first
// differences. Fewer than two samples yield zeros.
func Gradient(y []float64, h float64) []float64 {
	n := len(y)
	g := make([]float64, n)
	if n < 2 {
		return g
	}

	g[0] = (y[1] - y[0]) / h
	g[n-1] = (y[n-1] - y[n-2]) / h
	for i := 1; i < n-1; i++ {
		g[i] = (y[i+1] - y[i-1]) / (2 * h)
	}
	return g
}

// DissipationRate returns dE/dτ of the recorded energy.
func DissipationRate(h *sim.History, dTau float64) []float64 {
	return Gradient(h.Energy, dTau)
}

// EntropyProduction returns dS/dτ of the recorded entropy.
func EntropyProduction(h *sim.History, dTau float64) []float64 {
	return Gradient(h.Entropy, dTau)
}

// ThermodynamicTemperature returns (dE/dτ)/(dS/dτ) per step. Steps where
// the entropy is stationary yield NaN.
func ThermodynamicTemperature(h *sim.History, dTau float64) []float64 {
	dE := DissipationRate(h, dTau)
	dS := EntropyProduction(h, dTau)

	t := make([]float64, len(dE))
	for i := range t {
		if dS[i] == 0 {
			t[i] = math.NaN()
			continue
		}
		t[i] = dE[i] / dS[i]
	}
	return t
}

// Spread returns the standard deviation sqrt(<x²> - <x>²) per step.
func Spread(h *sim.History) []float64 {
	s := make([]float64, len(h.XMean))
	for i, m := range h.XMean {
		s[i] = math.Sqrt(math.Max(h.X2Mean[i]-m*m, 0))
	}
	return s
}
