package config

import "sort"

// Presets are named, complete configurations runnable without a file.
var Presets = map[string]*Config{
	// 50-step smoke run from a centred packet.
	"reference": {
		L: Ptr(20.0), N: Ptr(256), NumSteps: Ptr(50), DTau: Ptr(0.001),
		TParam: Ptr(1.0), Alpha: Ptr(1.0), ImaginaryTime: Ptr(true),
		X0: Ptr(0.0), Sigma0: Ptr(1.0), P0: Ptr(0.0),
		OutputDir: Ptr("simulation_reference"),
	},
	// One point of the built-in sweep.
	"collapse": {
		L: Ptr(20.0), N: Ptr(1024), NumSteps: Ptr(2000), DTau: Ptr(0.001),
		TParam: Ptr(1.0), Alpha: Ptr(1.0), ImaginaryTime: Ptr(true),
		SnapshotInterval: Ptr(200), X0: Ptr(-5.0), Sigma0: Ptr(1.0), P0: Ptr(0.0),
		M: Ptr(1.0), OutputDir: Ptr("simulation_collapse"),
	},
	// Zero coupling with the diffusive kinetic sign and ascending-k energy
	// quadrature: free relaxation.
	"free": {
		L: Ptr(40.0), N: Ptr(256), NumSteps: Ptr(500), DTau: Ptr(0.001),
		TParam: Ptr(1.0), Alpha: Ptr(0.0), ImaginaryTime: Ptr(true),
		SnapshotInterval: Ptr(50), X0: Ptr(0.0), Sigma0: Ptr(1.0),
		DiffusiveKinetic: Ptr(true), SortedKQuadrature: Ptr(true),
		OutputDir: Ptr("simulation_free"),
	},
	// Moving packet in real time.
	"drift": {
		L: Ptr(40.0), N: Ptr(512), NumSteps: Ptr(1000), DTau: Ptr(0.0005),
		TParam: Ptr(0.5), Alpha: Ptr(0.5), ImaginaryTime: Ptr(false),
		SnapshotInterval: Ptr(100), X0: Ptr(-8.0), Sigma0: Ptr(1.5), P0: Ptr(2.0),
		DiffusiveKinetic: Ptr(true), OutputDir: Ptr("simulation_drift"),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
