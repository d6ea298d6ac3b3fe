// Package spectral implements the operators the integrator applies each step.
//
// All functions are pure: they read a wavefunction sampled on a
// [dynamo.Grid] and return freshly allocated results, except the
// explicitly in-place helpers [Normalize] and [EntropyForce].
//
//   - [Kinetic]: H₀ψ = -½·IFFT(k²·FFT(ψ)) on the periodic grid
//   - [Entropy]: Shannon entropy S = -∫ρ ln ρ dx with the density floor
//   - [KineticEnergy], [PotentialEnergy], [Moments]: per-step diagnostics
//   - [Trapezoid]: the single quadrature rule used everywhere
//
// Spectral differentiation is exact only for band-limited functions;
// aliasing is not mitigated.
package spectral
