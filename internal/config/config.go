package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/sim"
)

const (
	DefaultMass             = 1.0
	DefaultImaginaryTime    = true
	DefaultSnapshotInterval = 200
	DefaultX0               = -5.0
	DefaultSigma0           = 1.0
	DefaultP0               = 0.0
	DefaultOutputDir        = "simulation_output"
)

var (
	// ErrMissingField indicates a required key is absent from the file.
	ErrMissingField = errors.New("config: missing required field")

	// ErrInvalidValue indicates a key whose value is out of range.
	ErrInvalidValue = errors.New("config: invalid value")
)

// Config mirrors the configuration file. Pointer fields distinguish an
// absent key from a zero value; Resolve fills defaults and validates.
type Config struct {
	L        *float64 `yaml:"L,omitempty"`
	N        *int     `yaml:"N,omitempty"`
	NumSteps *int     `yaml:"num_steps,omitempty"`
	DTau     *float64 `yaml:"d_tau,omitempty"`
	TParam   *float64 `yaml:"T_param,omitempty"`
	Alpha    *float64 `yaml:"alpha,omitempty"`

	M                *float64 `yaml:"m,omitempty"`
	ImaginaryTime    *bool    `yaml:"imaginary_time,omitempty"`
	SnapshotInterval *int     `yaml:"snapshot_interval,omitempty"`
	X0               *float64 `yaml:"x0,omitempty"`
	Sigma0           *float64 `yaml:"sigma0,omitempty"`
	P0               *float64 `yaml:"p0,omitempty"`
	OutputDir        *string  `yaml:"output_dir,omitempty"`

	CheckFinite       *bool `yaml:"check_finite,omitempty"`
	DiffusiveKinetic  *bool `yaml:"diffusive_kinetic,omitempty"`
	SortedKQuadrature *bool `yaml:"sorted_k_quadrature,omitempty"`
}

// Resolved is the immutable parameter set of one run.
type Resolved struct {
	L        float64 `yaml:"L" json:"L"`
	N        int     `yaml:"N" json:"N"`
	NumSteps int     `yaml:"num_steps" json:"num_steps"`
	DTau     float64 `yaml:"d_tau" json:"d_tau"`
	TParam   float64 `yaml:"T_param" json:"T_param"`
	Alpha    float64 `yaml:"alpha" json:"alpha"`

	M                float64 `yaml:"m" json:"m"`
	ImaginaryTime    bool    `yaml:"imaginary_time" json:"imaginary_time"`
	SnapshotInterval int     `yaml:"snapshot_interval" json:"snapshot_interval"`
	X0               float64 `yaml:"x0" json:"x0"`
	Sigma0           float64 `yaml:"sigma0" json:"sigma0"`
	P0               float64 `yaml:"p0" json:"p0"`
	OutputDir        string  `yaml:"output_dir" json:"output_dir"`

	CheckFinite       bool `yaml:"check_finite" json:"check_finite"`
	DiffusiveKinetic  bool `yaml:"diffusive_kinetic" json:"diffusive_kinetic"`
	SortedKQuadrature bool `yaml:"sorted_k_quadrature" json:"sorted_k_quadrature"`
}

// Load reads a YAML or JSON configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML (and therefore JSON) configuration data.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// Save writes a resolved configuration as YAML.
func Save(path string, r *Resolved) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve applies defaults and validates every field.
func (c *Config) Resolve() (*Resolved, error) {
	r := &Resolved{
		M:                DefaultMass,
		ImaginaryTime:    DefaultImaginaryTime,
		SnapshotInterval: DefaultSnapshotInterval,
		X0:               DefaultX0,
		Sigma0:           DefaultSigma0,
		P0:               DefaultP0,
		OutputDir:        DefaultOutputDir,
	}

	required := []struct {
		name string
		set  bool
	}{
		{"L", c.L != nil},
		{"N", c.N != nil},
		{"num_steps", c.NumSteps != nil},
		{"d_tau", c.DTau != nil},
		{"T_param", c.TParam != nil},
		{"alpha", c.Alpha != nil},
	}
	for _, f := range required {
		if !f.set {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	r.L, r.N, r.NumSteps = *c.L, *c.N, *c.NumSteps
	r.DTau, r.TParam, r.Alpha = *c.DTau, *c.TParam, *c.Alpha
	assign(&r.M, c.M)
	assign(&r.ImaginaryTime, c.ImaginaryTime)
	assign(&r.SnapshotInterval, c.SnapshotInterval)
	assign(&r.X0, c.X0)
	assign(&r.Sigma0, c.Sigma0)
	assign(&r.P0, c.P0)
	assign(&r.OutputDir, c.OutputDir)
	assign(&r.CheckFinite, c.CheckFinite)
	assign(&r.DiffusiveKinetic, c.DiffusiveKinetic)
	assign(&r.SortedKQuadrature, c.SortedKQuadrature)

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Ptr returns a pointer to v, for building a Config in code.
func Ptr[T any](v T) *T { return &v }

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks ranges. It is called by Resolve.
func (r *Resolved) Validate() error {
	switch {
	case !(r.L > 0) || !dynamo.Finite(r.L):
		return fmt.Errorf("%w: L must be positive, got %g", ErrInvalidValue, r.L)
	case r.N < 2:
		return fmt.Errorf("%w: N must be at least 2, got %d", ErrInvalidValue, r.N)
	case r.NumSteps <= 0:
		return fmt.Errorf("%w: num_steps must be positive, got %d", ErrInvalidValue, r.NumSteps)
	case !(r.DTau > 0) || !dynamo.Finite(r.DTau):
		return fmt.Errorf("%w: d_tau must be positive, got %g", ErrInvalidValue, r.DTau)
	case !dynamo.AllFinite(r.TParam, r.Alpha, r.X0, r.P0):
		return fmt.Errorf("%w: T_param, alpha, x0 and p0 must be finite", ErrInvalidValue)
	case !(r.M > 0) || !dynamo.Finite(r.M):
		return fmt.Errorf("%w: m must be positive, got %g", ErrInvalidValue, r.M)
	case r.SnapshotInterval <= 0:
		return fmt.Errorf("%w: snapshot_interval must be positive, got %d", ErrInvalidValue, r.SnapshotInterval)
	case !(r.Sigma0 > 0) || !dynamo.Finite(r.Sigma0):
		return fmt.Errorf("%w: sigma0 must be positive, got %g", ErrInvalidValue, r.Sigma0)
	case r.OutputDir == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidValue)
	}
	return nil
}

// Sim returns the integrator parameters of this run.
func (r *Resolved) Sim() *sim.Config {
	mode := sim.ImaginaryTime
	if !r.ImaginaryTime {
		mode = sim.RealTime
	}
	return &sim.Config{
		NumSteps:          r.NumSteps,
		DTau:              r.DTau,
		Alpha:             r.Alpha,
		Temperature:       r.TParam,
		Mass:              r.M,
		Mode:              mode,
		SnapshotInterval:  r.SnapshotInterval,
		CheckFinite:       r.CheckFinite,
		DiffusiveKinetic:  r.DiffusiveKinetic,
		SortedKQuadrature: r.SortedKQuadrature,
	}
}

// Grid builds the spatial grid of this run.
func (r *Resolved) Grid() (*dynamo.Grid, error) {
	return dynamo.NewGrid(r.N, r.L)
}

// StabilityNumber returns dτ·k_max²/2, the largest per-step growth or decay
// of a Fourier mode under the explicit update. Values well below 1 are safe.
func (r *Resolved) StabilityNumber() float64 {
	kMax := float64(r.N/2) * 2 * math.Pi / r.L
	return r.DTau * kMax * kMax / 2
}

// Merge returns base with every key set in override replaced.
func Merge(base, override *Config) *Config {
	out := *base
	pick(&out.L, override.L)
	pick(&out.N, override.N)
	pick(&out.NumSteps, override.NumSteps)
	pick(&out.DTau, override.DTau)
	pick(&out.TParam, override.TParam)
	pick(&out.Alpha, override.Alpha)
	pick(&out.M, override.M)
	pick(&out.ImaginaryTime, override.ImaginaryTime)
	pick(&out.SnapshotInterval, override.SnapshotInterval)
	pick(&out.X0, override.X0)
	pick(&out.Sigma0, override.Sigma0)
	pick(&out.P0, override.P0)
	pick(&out.OutputDir, override.OutputDir)
	pick(&out.CheckFinite, override.CheckFinite)
	pick(&out.DiffusiveKinetic, override.DiffusiveKinetic)
	pick(&out.SortedKQuadrature, override.SortedKQuadrature)
	return &out
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
