package sim

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/san-kum/entropic/internal/constraint"
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/spectral"
)

// Simulator integrates the entropy-driven evolution of one wavefunction.
//
// It owns the only writable copy of ψ. Steps are strictly sequential; a
// Simulator must not be shared between goroutines.
type Simulator struct {
	cfg       *Config
	grid      *dynamo.Grid
	psi       dynamo.Wavefunction
	force     dynamo.Wavefunction
	rate      complex128
	step      int
	hist      *History
	observers []Observer
	failed    error
}

// New validates cfg against grid and takes a private copy of psi0.
func New(grid *dynamo.Grid, cfg *Config, psi0 dynamo.Wavefunction) (*Simulator, error) {
	if grid == nil || cfg == nil {
		return nil, fmt.Errorf("%w: grid and config are required", dynamo.ErrParameterBounds)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(psi0) != grid.N {
		return nil, fmt.Errorf("%w: psi0 has %d points, grid has %d", dynamo.ErrDimensionMismatch, len(psi0), grid.N)
	}

	rate := complex(-cfg.DTau, 0)
	if cfg.Mode == RealTime {
		rate = complex(0, -cfg.DTau)
	}

	snapshots := (cfg.NumSteps-1)/cfg.SnapshotInterval + 1
	return &Simulator{
		cfg:   cfg,
		grid:  grid,
		psi:   psi0.Clone(),
		force: make(dynamo.Wavefunction, grid.N),
		rate:  rate,
		hist:  newHistory(cfg.NumSteps, snapshots),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.NumSteps <= 0 {
		return fmt.Errorf("%w: num_steps must be positive, got %d", dynamo.ErrParameterBounds, cfg.NumSteps)
	}
	if !(cfg.DTau > 0) || !dynamo.Finite(cfg.DTau) {
		return fmt.Errorf("%w: d_tau must be positive, got %g", dynamo.ErrParameterBounds, cfg.DTau)
	}
	if !(cfg.Mass > 0) || !dynamo.Finite(cfg.Mass) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrParameterBounds, cfg.Mass)
	}
	if cfg.SnapshotInterval <= 0 {
		return fmt.Errorf("%w: snapshot_interval must be positive, got %d", dynamo.ErrParameterBounds, cfg.SnapshotInterval)
	}
	if !dynamo.AllFinite(cfg.Alpha, cfg.Temperature) {
		return fmt.Errorf("%w: alpha and T must be finite", dynamo.ErrParameterBounds)
	}
	return nil
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Done reports whether every step has run or the run was aborted.
func (s *Simulator) Done() bool { return s.step >= s.cfg.NumSteps || s.failed != nil }

// Steps returns the number of completed steps.
func (s *Simulator) Steps() int { return s.step }

func (s *Simulator) Grid() *dynamo.Grid { return s.grid }

func (s *Simulator) Config() *Config { return s.cfg }

// Wavefunction returns a copy of the current state.
func (s *Simulator) Wavefunction() dynamo.Wavefunction { return s.psi.Clone() }

// History returns the diagnostics recorded so far. Callers must treat it as
// read-only while the run is in progress.
func (s *Simulator) History() *History { return s.hist }

// Step advances ψ by one dτ and records its diagnostics.
func (s *Simulator) Step() (StepDiagnostics, error) {
	if s.failed != nil {
		return StepDiagnostics{}, s.failed
	}
	if s.step >= s.cfg.NumSteps {
		return StepDiagnostics{}, dynamo.ErrFinished
	}

	cfg, g, psi := s.cfg, s.grid, s.psi
	n := s.step
	coupling := cfg.Coupling()

	ent := spectral.Entropy(psi, g.X)
	spectral.EntropyForce(s.force, psi, ent.LogRho, coupling)
	dir := spectral.Kinetic(psi, g.K)
	if cfg.DiffusiveKinetic {
		cmplxs.Scale(-1, dir)
	}
	mu, err := constraint.ChemicalPotential(psi, dir, s.force, g.X)
	if err != nil {
		return StepDiagnostics{}, err
	}

	// dir = K + F - μψ; ψ = ψ + rate·dir
	cmplxs.Add(dir, s.force)
	cmplxs.AddScaled(dir, complex(-mu, 0), psi)
	cmplxs.AddScaled(psi, s.rate, dir)

	spectral.Normalize(psi, g.X)
	norm := spectral.Norm(psi, g.X)

	ent = spectral.Entropy(psi, g.X)
	kinetic := kineticEnergy(psi, g, cfg)
	potential := spectral.PotentialEnergy(ent, g.X, coupling)
	xMean, x2Mean := spectral.Moments(ent.Rho, g.X)

	tau := float64(n) * cfg.DTau
	d := StepDiagnostics{
		Step:            n,
		Tau:             tau,
		Norm:            norm,
		Entropy:         ent.S,
		Energy:          kinetic + potential,
		KineticEnergy:   kinetic,
		PotentialEnergy: potential,
		XMean:           xMean,
		X2Mean:          x2Mean,
		Mu:              mu,
		Temperature:     cfg.Temperature,
		Snapshot:        n%cfg.SnapshotInterval == 0,
		Density:         ent.Rho,
	}

	if d.Snapshot {
		s.hist.Snapshots = append(s.hist.Snapshots, psi.Clone())
		s.hist.SnapshotSteps = append(s.hist.SnapshotSteps, n)
		s.hist.SnapshotTau = append(s.hist.SnapshotTau, tau)
	}
	s.hist.append(d)
	s.step++

	for _, obs := range s.observers {
		obs.OnStep(d)
	}

	if cfg.CheckFinite && !(d.finite() && psi.IsValid()) {
		s.failed = &dynamo.SimulationError{Step: n, Tau: tau, Wrapped: dynamo.ErrNonFinite}
		return d, s.failed
	}

	return d, nil
}

func kineticEnergy(psi dynamo.Wavefunction, g *dynamo.Grid, cfg *Config) float64 {
	if cfg.SortedKQuadrature {
		return spectral.KineticEnergySorted(psi, g, cfg.Mass)
	}
	return spectral.KineticEnergy(psi, g, cfg.Mass)
}

// Run steps until the configured number of steps completes. On error the
// partial result is returned together with the error.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	slog.Debug("simulation started",
		"n", s.grid.N, "steps", s.cfg.NumSteps, "d_tau", s.cfg.DTau,
		"alpha", s.cfg.Alpha, "T", s.cfg.Temperature, "mode", s.cfg.Mode)

	for !s.Done() {
		select {
		case <-ctx.Done():
			return s.Result(), &dynamo.SimulationError{
				Step:    s.step,
				Tau:     float64(s.step) * s.cfg.DTau,
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err()),
			}
		default:
		}

		if _, err := s.Step(); err != nil {
			return s.Result(), err
		}
	}

	slog.Debug("simulation finished", "steps", s.step)
	return s.Result(), nil
}

// Result bundles the grid, a copy of the current state and the history.
func (s *Simulator) Result() *Result {
	return &Result{
		Grid:    s.grid,
		Final:   s.psi.Clone(),
		History: s.hist,
		Steps:   s.step,
	}
}
