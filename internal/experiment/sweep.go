package experiment

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/entropic/internal/config"
)

var (
	DefaultTemperatures = []float64{0.5, 1.0, 1.5}
	DefaultAlphas       = []float64{1.0, 2.0, 3.0}
)

// SweepBase returns the parameters shared by every run of the built-in
// sweep. T_param, alpha and output_dir are filled per run.
func SweepBase() *config.Config {
	return &config.Config{
		L:                config.Ptr(20.0),
		N:                config.Ptr(1024),
		NumSteps:         config.Ptr(2000),
		DTau:             config.Ptr(0.001),
		M:                config.Ptr(1.0),
		ImaginaryTime:    config.Ptr(true),
		SnapshotInterval: config.Ptr(200),
		X0:               config.Ptr(-5.0),
		Sigma0:           config.Ptr(1.0),
		P0:               config.Ptr(0.0),
	}
}

// SweepDir names the output directory of one sweep point, for example
// simulation_T1.0_alpha2.0.
func SweepDir(t, alpha float64) string {
	return fmt.Sprintf("simulation_T%s_alpha%s", formatParam(t), formatParam(alpha))
}

// formatParam prints the shortest round-trip digits of v and keeps a
// trailing ".0" on whole numbers, so 1 becomes "1.0".
func formatParam(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if a := math.Abs(v); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// SweepConfigs resolves base once per (T, α) pair, T outermost. Each
// point gets its own output directory below root.
func SweepConfigs(base *config.Config, root string, temps, alphas []float64) ([]*config.Resolved, error) {
	cfgs := make([]*config.Resolved, 0, len(temps)*len(alphas))
	for _, t := range temps {
		for _, a := range alphas {
			c := *base
			c.TParam = config.Ptr(t)
			c.Alpha = config.Ptr(a)
			c.OutputDir = config.Ptr(filepath.Join(root, SweepDir(t, a)))

			r, err := c.Resolve()
			if err != nil {
				return nil, fmt.Errorf("sweep T=%g alpha=%g: %w", t, a, err)
			}
			cfgs = append(cfgs, r)
		}
	}
	return cfgs, nil
}

// RunSweep runs every configuration with at most parallel runs in flight.
// The first error cancels the remaining runs and is returned.
func RunSweep(ctx context.Context, cfgs []*config.Resolved, opts Options, parallel int) ([]*Outcome, error) {
	if parallel < 1 {
		parallel = 1
	}

	outcomes := make([]*Outcome, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			out, err := New(cfg, opts).Run(ctx)
			outcomes[i] = out
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.OutputDir, err)
			}
			return nil
		})
	}

	err := g.Wait()
	return outcomes, err
}
