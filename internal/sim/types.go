package sim

import (
	"github.com/san-kum/entropic/internal/dynamo"
)

// Mode selects the update rule.
type Mode int

const (
	// ImaginaryTime relaxes ψ ← ψ - dτ·(K + F - μψ).
	ImaginaryTime Mode = iota
	// RealTime rotates ψ ← ψ - i·dτ·(K + F - μψ).
	RealTime
)

func (m Mode) String() string {
	if m == RealTime {
		return "real"
	}
	return "imaginary"
}

// Config is the resolved, read-only parameter set of one run.
type Config struct {
	NumSteps         int
	DTau             float64
	Alpha            float64
	Temperature      float64
	Mass             float64
	Mode             Mode
	SnapshotInterval int

	// CheckFinite aborts the run with dynamo.ErrNonFinite as soon as a step
	// produces NaN or Inf. Off by default so results match unchecked runs.
	CheckFinite bool

	// DiffusiveKinetic flips the kinetic term to +½·IFFT(k²·FFT(ψ)) = -½∂²ψ.
	DiffusiveKinetic bool

	// SortedKQuadrature integrates the kinetic energy over ascending k
	// instead of the transform order of the wavenumbers.
	SortedKQuadrature bool
}

// Coupling returns α·T, the prefactor of the entropy force.
func (c *Config) Coupling() float64 {
	return c.Alpha * c.Temperature
}

// History holds the diagnostics recorded once per completed step.
type History struct {
	Norm            []float64
	Entropy         []float64
	Energy          []float64
	KineticEnergy   []float64
	PotentialEnergy []float64
	XMean           []float64
	X2Mean          []float64
	Mu              []float64
	Tau             []float64
	Temperature     []float64

	Snapshots     []dynamo.Wavefunction
	SnapshotSteps []int
	SnapshotTau   []float64
}

func newHistory(steps, snapshots int) *History {
	return &History{
		Norm:            make([]float64, 0, steps),
		Entropy:         make([]float64, 0, steps),
		Energy:          make([]float64, 0, steps),
		KineticEnergy:   make([]float64, 0, steps),
		PotentialEnergy: make([]float64, 0, steps),
		XMean:           make([]float64, 0, steps),
		X2Mean:          make([]float64, 0, steps),
		Mu:              make([]float64, 0, steps),
		Tau:             make([]float64, 0, steps),
		Temperature:     make([]float64, 0, steps),
		Snapshots:       make([]dynamo.Wavefunction, 0, snapshots),
		SnapshotSteps:   make([]int, 0, snapshots),
		SnapshotTau:     make([]float64, 0, snapshots),
	}
}

// Len returns the number of recorded steps.
func (h *History) Len() int { return len(h.Tau) }

func (h *History) append(d StepDiagnostics) {
	h.Norm = append(h.Norm, d.Norm)
	h.Entropy = append(h.Entropy, d.Entropy)
	h.Energy = append(h.Energy, d.Energy)
	h.KineticEnergy = append(h.KineticEnergy, d.KineticEnergy)
	h.PotentialEnergy = append(h.PotentialEnergy, d.PotentialEnergy)
	h.XMean = append(h.XMean, d.XMean)
	h.X2Mean = append(h.X2Mean, d.X2Mean)
	h.Mu = append(h.Mu, d.Mu)
	h.Tau = append(h.Tau, d.Tau)
	h.Temperature = append(h.Temperature, d.Temperature)
}

// StepDiagnostics is the per-step record handed to observers.
type StepDiagnostics struct {
	Step            int
	Tau             float64
	Norm            float64
	Entropy         float64
	Energy          float64
	KineticEnergy   float64
	PotentialEnergy float64
	XMean           float64
	X2Mean          float64
	Mu              float64
	Temperature     float64
	Snapshot        bool

	// Density is the post-update |ψ|² of this step. Observers may keep it.
	Density []float64
}

func (d StepDiagnostics) finite() bool {
	return dynamo.AllFinite(d.Norm, d.Entropy, d.Energy, d.KineticEnergy,
		d.PotentialEnergy, d.XMean, d.X2Mean, d.Mu)
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(d StepDiagnostics)
}

// Result is the bundle handed to writers and plotters once a run ends.
type Result struct {
	Grid    *dynamo.Grid
	Final   dynamo.Wavefunction
	History *History
	Steps   int
}
