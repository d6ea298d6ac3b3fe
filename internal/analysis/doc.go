// Package analysis post-processes a finished run.
//
// The package includes tools for characterising the relaxation:
//
//   - [Gradient]: second-order finite differences (dE/dτ, dS/dτ)
//   - [DissipationRate]: energy dissipation rate of a history
//   - [ThermodynamicTemperature]: dE/dS along the trajectory
//   - [MomentumSpectrum]: |ψ(k)|² in ascending k order
//   - [Summarize]: final-state summary used by the CLI and the catalog
//
// # Relaxation
//
// In imaginary time the dissipation rate should stay non-positive once the
// state has settled:
//
//	rate := analysis.DissipationRate(res.History, cfg.DTau)
//	if rate[len(rate)-1] > 0 {
//	    // still heating, or the explicit step is unstable
//	}
package analysis
