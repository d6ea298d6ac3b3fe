package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/experiment"
)

const defaultDataDir = ".entropic"

var (
	dataDir     string
	configFile  string
	parallel    int
	noPlots     bool
	movie       bool
	checkFinite bool
	logLevel    string

	sweepTemps  []float64
	sweepAlphas []float64
	sweepRoot   string

	exportOut  string
	plotWidth  int
	plotHeight int
	plotPNG    bool
	livePreset string
)

func main() {
	_ = godotenv.Load(".env")

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "entropic",
		Short: "entropy-driven wavefunction collapse simulator",
		Long: "Evolves a 1D wavefunction under the entropic potential αT(ln|ψ|²+1).\n" +
			"With --config a single configuration is run; without it the built-in\n" +
			"(T, alpha) sweep is run.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		RunE: runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", envOr("ENTROPIC_DATA", defaultDataDir), "data directory holding the run catalog")
	pf.IntVar(&parallel, "parallel", 1, "simulations run concurrently in a sweep")
	pf.BoolVar(&noPlots, "no-plots", false, "skip PNG diagnostics")
	pf.BoolVar(&movie, "movie", false, "also write collapse.avi")
	pf.BoolVar(&checkFinite, "check-finite", false, "abort a run on the first NaN or Inf")
	pf.StringVar(&logLevel, "log-level", envOr("ENTROPIC_LOG", "info"), "debug, info, warn or error")

	rootCmd.Flags().StringVar(&configFile, "config", "", "configuration file (yaml or json)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a (T, alpha) sweep",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64SliceVar(&sweepTemps, "T", experiment.DefaultTemperatures, "temperatures")
	sweepCmd.Flags().Float64SliceVar(&sweepAlphas, "alpha", experiment.DefaultAlphas, "entropy couplings")
	sweepCmd.Flags().StringVar(&sweepRoot, "out", "", "parent directory of the run directories")
	sweepCmd.Flags().StringVar(&configFile, "config", "", "base configuration; T_param and alpha are overridden")

	presetCmd := &cobra.Command{
		Use:   "preset [name]",
		Short: "run a named preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreset,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	initCmd := &cobra.Command{
		Use:   "init [file] [preset]",
		Short: "write a configuration file from a preset",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  initConfig,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [dir]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().BoolVar(&plotPNG, "png", false, "re-render the PNG diagnostics into the run directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "summarise a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list catalogued runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&livePreset, "preset", "", "preset to start with")
	liveCmd.Flags().StringVar(&configFile, "config", "", "configuration file to start with")

	rootCmd.AddCommand(sweepCmd, scenarioCmd, presetCmd, presetsCmd, initCmd, plotCmd, analyzeCmd, exportCmd, listCmd, liveCmd)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func loadConfig(path string) (*config.Resolved, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	applyOverrides(resolved)
	return resolved, nil
}

func applyOverrides(r *config.Resolved) {
	if checkFinite {
		r.CheckFinite = true
	}
}
