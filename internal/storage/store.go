package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/entropic/internal/analysis"
	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/sim"
)

const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"

	MetadataFile    = "metadata.json"
	DissipationFile = "energy_dissipation_rate.csv"
)

// RunMetadata describes a persisted run.
type RunMetadata struct {
	ID            string           `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Status        string           `json:"status"`
	Error         string           `json:"error,omitempty"`
	Config        config.Resolved  `json:"config"`
	Steps         int              `json:"steps"`
	SnapshotShape [2]int           `json:"snapshot_shape"`
	SnapshotSteps []int            `json:"snapshot_steps"`
	Summary       analysis.Summary `json:"summary"`
}

// Run is a run read back from disk.
type Run struct {
	Dir     string
	Meta    *RunMetadata
	History *sim.History
	Final   dynamo.Wavefunction
	X       []float64
	K       []float64
}

// Save writes result into cfg.OutputDir. runErr is the error that ended the
// run early, if any; the partial history is stored and the run is marked
// aborted.
func Save(cfg *config.Resolved, result *sim.Result, runErr error) (*RunMetadata, error) {
	dir := cfg.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	h := result.History
	series := []struct {
		name string
		data []float64
	}{
		{"norm_history", h.Norm},
		{"entropy_history", h.Entropy},
		{"energy_history", h.Energy},
		{"kinetic_energy_history", h.KineticEnergy},
		{"potential_energy_history", h.PotentialEnergy},
		{"x_mean_history", h.XMean},
		{"x2_mean_history", h.X2Mean},
		{"mu_history", h.Mu},
		{"tau", h.Tau},
		{"T_computed", h.Temperature},
		{"snapshot_tau", h.SnapshotTau},
		{"x", result.Grid.X},
		{"k", result.Grid.K},
	}
	for _, s := range series {
		if err := writeNpy(dir, s.name, nonNil(s.data)); err != nil {
			return nil, err
		}
	}

	flat := make([]complex128, 0, len(h.Snapshots)*result.Grid.N)
	for _, snap := range h.Snapshots {
		flat = append(flat, snap...)
	}
	if err := writeNpy(dir, "snapshots", flat); err != nil {
		return nil, err
	}
	if err := writeNpy(dir, "psi_final", []complex128(result.Final)); err != nil {
		return nil, err
	}

	if err := writeDissipation(filepath.Join(dir, DissipationFile), h, cfg.DTau); err != nil {
		return nil, err
	}

	meta := &RunMetadata{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		Status:        StatusCompleted,
		Config:        *cfg,
		Steps:         h.Len(),
		SnapshotShape: [2]int{len(h.Snapshots), result.Grid.N},
		SnapshotSteps: nonNilInts(h.SnapshotSteps),
		Summary:       analysis.Summarize(h),
	}
	if runErr != nil {
		meta.Status = StatusAborted
		meta.Error = runErr.Error()
	}

	if err := writeMetadata(filepath.Join(dir, MetadataFile), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	return createFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
}

func writeDissipation(path string, h *sim.History, dTau float64) error {
	return createFile(path, func(f io.Writer) error {
		w := csv.NewWriter(f)
		if err := w.Write([]string{"Tau", "Energy", "Energy Dissipation Rate"}); err != nil {
			return err
		}

		rate := analysis.DissipationRate(h, dTau)
		for i := range h.Energy {
			row := []string{
				formatFloat(h.Tau[i]),
				formatFloat(h.Energy[i]),
				formatFloat(rate[i]),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}

		w.Flush()
		return w.Error()
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// LoadMetadata reads metadata.json from a run directory.
func LoadMetadata(dir string) (*RunMetadata, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &meta, nil
}

// Load reads a run directory written by Save.
func Load(dir string) (*Run, error) {
	meta, err := LoadMetadata(dir)
	if err != nil {
		return nil, err
	}

	h := &sim.History{SnapshotSteps: meta.SnapshotSteps}
	targets := []struct {
		name string
		dst  *[]float64
	}{
		{"norm_history", &h.Norm},
		{"entropy_history", &h.Entropy},
		{"energy_history", &h.Energy},
		{"kinetic_energy_history", &h.KineticEnergy},
		{"potential_energy_history", &h.PotentialEnergy},
		{"x_mean_history", &h.XMean},
		{"x2_mean_history", &h.X2Mean},
		{"mu_history", &h.Mu},
		{"tau", &h.Tau},
		{"T_computed", &h.Temperature},
		{"snapshot_tau", &h.SnapshotTau},
	}
	for _, t := range targets {
		v, err := readNpy[float64](dir, t.name)
		if err != nil {
			return nil, err
		}
		*t.dst = v
	}

	run := &Run{Dir: dir, Meta: meta, History: h}
	if run.X, err = readNpy[float64](dir, "x"); err != nil {
		return nil, err
	}
	if run.K, err = readNpy[float64](dir, "k"); err != nil {
		return nil, err
	}

	final, err := readNpy[complex128](dir, "psi_final")
	if err != nil {
		return nil, err
	}
	run.Final = final

	flat, err := readNpy[complex128](dir, "snapshots")
	if err != nil {
		return nil, err
	}
	rows, cols := meta.SnapshotShape[0], meta.SnapshotShape[1]
	if len(flat) != rows*cols {
		return nil, fmt.Errorf("snapshots: %w: have %d values, want %dx%d",
			dynamo.ErrDimensionMismatch, len(flat), rows, cols)
	}
	h.Snapshots = make([]dynamo.Wavefunction, rows)
	for i := range h.Snapshots {
		h.Snapshots[i] = dynamo.Wavefunction(flat[i*cols : (i+1)*cols])
	}

	return run, nil
}

// List returns the metadata of every run directory below baseDir.
// Directories without a readable metadata.json are skipped.
func List(baseDir string) ([]*RunMetadata, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var runs []*RunMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := LoadMetadata(filepath.Join(baseDir, entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
