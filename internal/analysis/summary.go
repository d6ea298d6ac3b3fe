package analysis

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/san-kum/entropic/internal/sim"
)

// Float is a float64 whose JSON form keeps NaN and ±Inf as strings, so a
// diverged run can still be described.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Summary condenses a history into a few scalars.
type Summary struct {
	Steps          int   `json:"steps"`
	Snapshots      int   `json:"snapshots"`
	FinalNorm      Float `json:"final_norm"`
	FinalEntropy   Float `json:"final_entropy"`
	FinalEnergy    Float `json:"final_energy"`
	FinalXMean     Float `json:"final_x_mean"`
	FinalSpread    Float `json:"final_spread"`
	EnergyChange   Float `json:"energy_change"`
	EntropyChange  Float `json:"entropy_change"`
	MaxNormDrift   Float `json:"max_norm_drift"`
	NonFiniteSteps int   `json:"non_finite_steps"`
}

// Summarize computes a Summary. An empty history yields the zero value.
func Summarize(h *sim.History) Summary {
	n := h.Len()
	if n == 0 {
		return Summary{}
	}

	last := n - 1
	s := Summary{
		Steps:         n,
		Snapshots:     len(h.Snapshots),
		FinalNorm:     Float(h.Norm[last]),
		FinalEntropy:  Float(h.Entropy[last]),
		FinalEnergy:   Float(h.Energy[last]),
		FinalXMean:    Float(h.XMean[last]),
		FinalSpread:   Float(Spread(h)[last]),
		EnergyChange:  Float(h.Energy[last] - h.Energy[0]),
		EntropyChange: Float(h.Entropy[last] - h.Entropy[0]),
	}

	drift := 0.0
	for i := 0; i < n; i++ {
		finite := true
		for _, v := range []float64{h.Norm[i], h.Entropy[i], h.Energy[i], h.XMean[i], h.X2Mean[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finite = false
				break
			}
		}
		if !finite {
			s.NonFiniteSteps++
			continue
		}
		drift = math.Max(drift, math.Abs(h.Norm[i]-1))
	}
	s.MaxNormDrift = Float(drift)
	return s
}
