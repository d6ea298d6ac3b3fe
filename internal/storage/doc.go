// Package storage persists simulation runs.
//
// A run directory holds one .npy file per recorded sequence, the energy
// dissipation table as CSV and a metadata.json describing the run. A
// sqlite catalog in the data directory indexes every run written.
package storage
