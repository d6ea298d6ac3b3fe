package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/entropic/internal/analysis"
	"github.com/san-kum/entropic/internal/automation"
	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/experiment"
	"github.com/san-kum/entropic/internal/storage"
	"github.com/san-kum/entropic/internal/tui"
	"github.com/san-kum/entropic/internal/viz"
)

// withRunner opens the catalog, wires the run options and hands them to fn.
func withRunner(cmd *cobra.Command, fn func(ctx context.Context, opts experiment.Options) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	catalog, err := storage.OpenCatalog(dataDir)
	if err != nil {
		return err
	}
	defer catalog.Close()

	opts := experiment.Options{
		Writer:  experiment.FileWriter{},
		Catalog: catalog,
		Logger:  slog.Default(),
	}
	if !noPlots {
		opts.Plotter = viz.Plotter{Movie: movie}
	}
	return fn(ctx, opts)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		sweepTemps, sweepAlphas = experiment.DefaultTemperatures, experiment.DefaultAlphas
		return runSweep(cmd, args)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	return runOne(cmd, cfg)
}

func runPreset(cmd *cobra.Command, args []string) error {
	p := config.GetPreset(args[0])
	if p == nil {
		return fmt.Errorf("unknown preset %q (see 'entropic presets')", args[0])
	}
	cfg, err := p.Resolve()
	if err != nil {
		return err
	}
	applyOverrides(cfg)
	return runOne(cmd, cfg)
}

func runOne(cmd *cobra.Command, cfg *config.Resolved) error {
	return withRunner(cmd, func(ctx context.Context, opts experiment.Options) error {
		out, err := experiment.New(cfg, opts).Run(ctx)
		if out != nil {
			printOutcome(cmd, out)
		}
		return err
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	base := experiment.SweepBase()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		base = loaded
	}
	if checkFinite {
		base.CheckFinite = config.Ptr(true)
	}

	cfgs, err := experiment.SweepConfigs(base, sweepRoot, sweepTemps, sweepAlphas)
	if err != nil {
		return err
	}

	slog.Info("starting sweep", "runs", len(cfgs), "parallel", parallel)
	return withRunner(cmd, func(ctx context.Context, opts experiment.Options) error {
		outs, err := experiment.RunSweep(ctx, cfgs, opts, parallel)
		for _, out := range outs {
			if out != nil {
				printOutcome(cmd, out)
			}
		}
		return err
	})
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if checkFinite {
		s.Defaults.CheckFinite = config.Ptr(true)
	}

	return withRunner(cmd, func(ctx context.Context, opts experiment.Options) error {
		outs, err := automation.RunScenario(ctx, s, opts)
		for _, out := range outs {
			printOutcome(cmd, out)
		}
		return err
	})
}

func printOutcome(cmd *cobra.Command, out *experiment.Outcome) {
	h := out.Result.History
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d steps", out.Config.OutputDir, h.Len())
	if n := h.Len(); n > 0 {
		fmt.Fprintf(w, ", S=%.6f E=%.6f <x>=%.4f", h.Entropy[n-1], h.Energy[n-1], h.XMean[n-1])
	}
	if out.Meta != nil {
		fmt.Fprintf(w, " [%s]", out.Meta.Status)
	}
	fmt.Fprintln(w)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tT\tALPHA\tN\tSTEPS\tD_TAU")
	for _, name := range config.ListPresets() {
		r, err := config.GetPreset(name).Resolve()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%d\t%d\t%g\n", name, r.TParam, r.Alpha, r.N, r.NumSteps, r.DTau)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	name := "reference"
	if len(args) > 1 {
		name = args[1]
	}
	p := config.GetPreset(name)
	if p == nil {
		return fmt.Errorf("unknown preset %q", name)
	}
	r, err := p.Resolve()
	if err != nil {
		return err
	}
	if err := config.Save(args[0], r); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (preset %s)\n", args[0], name)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := storage.Load(args[0])
	if err != nil {
		return err
	}
	h := run.History

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run: %s (%s)\n", run.Meta.ID, run.Meta.Status)
	fmt.Fprintf(w, "T=%g alpha=%g steps=%d\n\n", run.Meta.Config.TParam, run.Meta.Config.Alpha, h.Len())

	names := []string{"entropy", "energy", "dE/dtau", "<x>", "spread"}
	series := [][]float64{
		h.Entropy,
		h.Energy,
		analysis.DissipationRate(h, run.Meta.Config.DTau),
		h.XMean,
		analysis.Spread(h),
	}
	fmt.Fprint(w, viz.TerminalReport(names, series, plotWidth, plotHeight))

	if len(h.Snapshots) > 0 {
		last := h.Snapshots[len(h.Snapshots)-1]
		rho := make([]float64, len(last))
		for i, v := range last {
			rho[i] = real(v)*real(v) + imag(v)*imag(v)
		}
		fmt.Fprint(w, viz.TerminalPlot(fmt.Sprintf("|psi|^2 at tau=%.4f", h.SnapshotTau[len(h.SnapshotTau)-1]), rho, plotWidth, plotHeight))
	}

	if plotPNG {
		p := viz.Plotter{Movie: movie}
		if err := p.PlotHistory(run.Dir, run.Meta.Config.DTau, run.X, h); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nPNG diagnostics written to %s\n", run.Dir)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := storage.Load(args[0])
	if err != nil {
		return err
	}
	h := run.History
	s := analysis.Summarize(h)

	g, err := run.Meta.Config.Grid()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", run.Meta.ID)
	fmt.Fprintf(w, "status\t%s\n", run.Meta.Status)
	if run.Meta.Error != "" {
		fmt.Fprintf(w, "error\t%s\n", run.Meta.Error)
	}
	fmt.Fprintf(w, "steps\t%d\n", s.Steps)
	fmt.Fprintf(w, "snapshots\t%d\n", s.Snapshots)
	fmt.Fprintf(w, "final norm\t%.12f\n", float64(s.FinalNorm))
	fmt.Fprintf(w, "max |norm-1|\t%.3e\n", float64(s.MaxNormDrift))
	fmt.Fprintf(w, "final entropy\t%.6f\n", float64(s.FinalEntropy))
	fmt.Fprintf(w, "final energy\t%.6f\n", float64(s.FinalEnergy))
	fmt.Fprintf(w, "entropy change\t%.6f\n", float64(s.EntropyChange))
	fmt.Fprintf(w, "energy change\t%.6f\n", float64(s.EnergyChange))
	fmt.Fprintf(w, "final <x>\t%.6f\n", float64(s.FinalXMean))
	fmt.Fprintf(w, "final spread\t%.6f\n", float64(s.FinalSpread))
	fmt.Fprintf(w, "non-finite steps\t%d\n", s.NonFiniteSteps)

	if s.Steps > 0 {
		temp := analysis.ThermodynamicTemperature(h, run.Meta.Config.DTau)
		fmt.Fprintf(w, "dE/dS (final)\t%.6f\n", temp[len(temp)-1])
		fmt.Fprintf(w, "T parameter\t%g\n", run.Meta.Config.TParam)
	}
	if run.Final.IsValid() {
		fmt.Fprintf(w, "peak momentum\t%.4f\n", analysis.PeakMomentum(run.Final, g))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if math.IsNaN(float64(s.FinalEnergy)) {
		slog.Warn("run diverged", "dir", args[0])
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	run, err := storage.Load(args[0])
	if err != nil {
		return err
	}
	if exportOut == "" {
		return storage.WriteJSON(cmd.OutOrStdout(), run)
	}
	if err := storage.ExportJSON(exportOut, run); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", exportOut)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	catalog, err := storage.OpenCatalog(dataDir)
	if err != nil {
		return err
	}
	defer catalog.Close()

	entries, err := catalog.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTATUS\tT\tALPHA\tSTEPS\tENERGY\tDIR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%d\t%.6f\t%s\n",
			e.ID[:min(8, len(e.ID))],
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Status,
			e.Temperature,
			e.Alpha,
			e.Steps,
			e.FinalEnergy,
			e.OutputDir,
		)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if configFile != "" && livePreset != "" {
		return errors.New("--config and --preset are mutually exclusive")
	}

	var m tui.Model
	switch {
	case configFile != "":
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		if m, err = tui.NewModel(configFile, cfg); err != nil {
			return err
		}
	case livePreset != "":
		p := config.GetPreset(livePreset)
		if p == nil {
			return fmt.Errorf("unknown preset %q", livePreset)
		}
		cfg, err := p.Resolve()
		if err != nil {
			return err
		}
		applyOverrides(cfg)
		if m, err = tui.NewModel(livePreset, cfg); err != nil {
			return err
		}
	default:
		m = tui.NewMenu()
	}
	return tui.Run(m)
}
