package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/sim"
	"github.com/san-kum/entropic/internal/storage"
)

// Writer persists a finished or aborted run.
type Writer interface {
	Save(cfg *config.Resolved, result *sim.Result, runErr error) (*storage.RunMetadata, error)
}

// Plotter renders diagnostics of a completed run.
type Plotter interface {
	Plot(cfg *config.Resolved, result *sim.Result) error
}

// Catalog records persisted runs.
type Catalog interface {
	Record(ctx context.Context, meta *storage.RunMetadata) error
}

// FileWriter writes runs with storage.Save.
type FileWriter struct{}

func (FileWriter) Save(cfg *config.Resolved, result *sim.Result, runErr error) (*storage.RunMetadata, error) {
	return storage.Save(cfg, result, runErr)
}

// Options wires the side effects of a run. Nil fields are skipped.
type Options struct {
	Writer    Writer
	Plotter   Plotter
	Catalog   Catalog
	Observers []sim.Observer
	Logger    *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Outcome is what one run produced.
type Outcome struct {
	Config *config.Resolved
	Result *sim.Result
	Meta   *storage.RunMetadata
}

// Experiment runs one resolved configuration end to end.
type Experiment struct {
	cfg  *config.Resolved
	opts Options
}

func New(cfg *config.Resolved, opts Options) *Experiment {
	return &Experiment{cfg: cfg, opts: opts}
}

// Setup builds the grid, the initial packet and the simulator.
func (e *Experiment) Setup() (*sim.Simulator, error) {
	grid, err := e.cfg.Grid()
	if err != nil {
		return nil, err
	}

	psi0 := GaussianPacket(grid, e.cfg.X0, e.cfg.Sigma0, e.cfg.P0)
	s, err := sim.New(grid, e.cfg.Sim(), psi0)
	if err != nil {
		return nil, err
	}
	for _, obs := range e.opts.Observers {
		s.AddObserver(obs)
	}
	return s, nil
}

// Run integrates, persists and plots. When the integrator aborts, the
// partial history is still written, plotting is skipped and the
// integrator's error is returned alongside the outcome.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	log := e.opts.logger().With("output_dir", e.cfg.OutputDir)

	if n := e.cfg.StabilityNumber(); n > 1 {
		log.Warn("d_tau exceeds the explicit stability limit", "stability_number", n)
	}

	s, err := e.Setup()
	if err != nil {
		return nil, err
	}

	log.Info("running simulation",
		"T", e.cfg.TParam, "alpha", e.cfg.Alpha,
		"steps", e.cfg.NumSteps, "N", e.cfg.N, "mode", e.cfg.Sim().Mode)

	result, runErr := s.Run(ctx)
	if runErr != nil {
		var simErr *dynamo.SimulationError
		if !errors.As(runErr, &simErr) {
			return nil, runErr
		}
		log.Error("simulation aborted", "step", simErr.Step, "tau", simErr.Tau, "error", simErr.Wrapped)
	}

	out := &Outcome{Config: e.cfg, Result: result}
	if e.opts.Writer != nil {
		meta, err := e.opts.Writer.Save(e.cfg, result, runErr)
		if err != nil {
			return out, errors.Join(runErr, fmt.Errorf("save %s: %w", e.cfg.OutputDir, err))
		}
		out.Meta = meta
		log.Info("results saved", "id", meta.ID, "steps", meta.Steps)

		// A canceled run is still catalogued.
		if e.opts.Catalog != nil {
			if err := e.opts.Catalog.Record(context.WithoutCancel(ctx), meta); err != nil {
				return out, errors.Join(runErr, err)
			}
		}
	}

	if runErr != nil {
		return out, runErr
	}

	if e.opts.Plotter != nil {
		if err := e.opts.Plotter.Plot(e.cfg, result); err != nil {
			return out, fmt.Errorf("plot %s: %w", e.cfg.OutputDir, err)
		}
		log.Debug("plots written")
	}
	return out, nil
}
