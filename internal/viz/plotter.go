package viz

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/entropic/internal/analysis"
	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/sim"
)

// Output file names below a run directory.
const (
	EntropyEnergyFile = "entropy_energy.png"
	TemperatureFile   = "temperature_dissipation.png"
	ExpectationFile   = "expectation_values.png"
	HeatmapFile       = "collapse_heatmap.png"
	MovieFile         = "collapse.avi"
)

// Plotter writes the diagnostic figures of a run into its output directory.
type Plotter struct {
	// Movie also writes collapse.avi.
	Movie bool
	FPS   int
}

func (p Plotter) Plot(cfg *config.Resolved, result *sim.Result) error {
	return p.PlotHistory(cfg.OutputDir, cfg.DTau, result.Grid.X, result.History)
}

// PlotHistory renders h into dir. The heatmap and movie are skipped when
// there are no snapshots.
func (p Plotter) PlotHistory(dir string, dTau float64, x []float64, h *sim.History) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	charts := []struct {
		name  string
		chart *Chart
	}{
		{EntropyEnergyFile, &Chart{
			Title:  "Entropy & Energy",
			XLabel: "tau",
			X:      h.Tau,
			Series: []Series{
				{Name: "Entropy", Y: h.Entropy, Color: chart.ColorBlue},
				{Name: "Energy", Y: h.Energy, Color: chart.ColorOrange},
			},
		}},
		{TemperatureFile, &Chart{
			Title:  "Dissipation & Effective Temperature",
			XLabel: "tau",
			X:      h.Tau,
			Series: []Series{
				{Name: "dE/dtau", Y: analysis.DissipationRate(h, dTau), Color: chart.ColorBlue},
				{Name: "T(tau)", Y: h.Temperature, Color: chart.ColorOrange},
			},
		}},
		{ExpectationFile, &Chart{
			Title:  "Position Expectation Values",
			XLabel: "tau",
			X:      h.Tau,
			Series: []Series{
				{Name: "<x>", Y: h.XMean, Color: chart.ColorBlue},
				{Name: "<x^2>", Y: h.X2Mean, Color: chart.ColorOrange},
			},
		}},
	}

	for _, c := range charts {
		path := filepath.Join(dir, c.name)
		if err := c.chart.Save(path); err != nil {
			if errors.Is(err, ErrNoData) {
				slog.Warn("chart skipped", "path", path, "reason", err)
				continue
			}
			return err
		}
	}

	if len(h.Snapshots) == 0 {
		slog.Debug("no snapshots, heatmap skipped", "dir", dir)
		return nil
	}

	hm := &Heatmap{X: x, Tau: h.SnapshotTau, Snapshots: h.Snapshots}
	if err := hm.Save(filepath.Join(dir, HeatmapFile)); err != nil {
		return err
	}

	if p.Movie {
		path := filepath.Join(dir, MovieFile)
		if err := Movie(path, x, h.SnapshotTau, h.Snapshots, p.FPS); err != nil {
			return fmt.Errorf("movie %s: %w", path, err)
		}
	}
	return nil
}
