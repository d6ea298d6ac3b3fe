package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/entropic/internal/analysis"
)

// ExportData is the JSON form of a whole run.
type ExportData struct {
	Meta            *RunMetadata       `json:"metadata"`
	X               []analysis.Float   `json:"x"`
	Tau             []analysis.Float   `json:"tau"`
	Norm            []analysis.Float   `json:"norm"`
	Entropy         []analysis.Float   `json:"entropy"`
	Energy          []analysis.Float   `json:"energy"`
	KineticEnergy   []analysis.Float   `json:"kinetic_energy"`
	PotentialEnergy []analysis.Float   `json:"potential_energy"`
	XMean           []analysis.Float   `json:"x_mean"`
	X2Mean          []analysis.Float   `json:"x2_mean"`
	Mu              []analysis.Float   `json:"mu"`
	Temperature     []analysis.Float   `json:"temperature"`
	Dissipation     []analysis.Float   `json:"dissipation_rate"`
	SnapshotTau     []analysis.Float   `json:"snapshot_tau"`
	Densities       [][]analysis.Float `json:"snapshot_density"`
}

func floats(v []float64) []analysis.Float {
	out := make([]analysis.Float, len(v))
	for i, f := range v {
		out[i] = analysis.Float(f)
	}
	return out
}

func newExportData(run *Run) *ExportData {
	h := run.History
	data := &ExportData{
		Meta:            run.Meta,
		X:               floats(run.X),
		Tau:             floats(h.Tau),
		Norm:            floats(h.Norm),
		Entropy:         floats(h.Entropy),
		Energy:          floats(h.Energy),
		KineticEnergy:   floats(h.KineticEnergy),
		PotentialEnergy: floats(h.PotentialEnergy),
		XMean:           floats(h.XMean),
		X2Mean:          floats(h.X2Mean),
		Mu:              floats(h.Mu),
		Temperature:     floats(h.Temperature),
		Dissipation:     floats(analysis.DissipationRate(h, run.Meta.Config.DTau)),
		SnapshotTau:     floats(h.SnapshotTau),
		Densities:       make([][]analysis.Float, len(h.Snapshots)),
	}
	for i, snap := range h.Snapshots {
		rho := make([]analysis.Float, len(snap))
		for j, v := range snap {
			rho[j] = analysis.Float(real(v)*real(v) + imag(v)*imag(v))
		}
		data.Densities[i] = rho
	}
	return data
}

// WriteJSON encodes run as indented JSON.
func WriteJSON(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newExportData(run))
}

// ExportJSON writes run to path.
func ExportJSON(path string, run *Run) error {
	return createFile(path, func(w io.Writer) error {
		return WriteJSON(w, run)
	})
}
