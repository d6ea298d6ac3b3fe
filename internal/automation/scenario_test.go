package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/experiment"
)

const scenarioYAML = `
name: coupling
description: increasing alpha at fixed T
defaults:
  L: 20
  N: 64
  num_steps: 6
  d_tau: 0.001
  T_param: 1.0
  alpha: 1.0
  snapshot_interval: 3
steps:
  - name: weak
    alpha: 0.5
  - name: strong
    alpha: 4.0
    output_dir: custom
  - {}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "coupling", s.Name)
	require.Len(t, s.Steps, 3)

	cfgs, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfgs[0].Alpha)
	assert.Equal(t, filepath.Join("coupling", "weak"), cfgs[0].OutputDir)
	assert.Equal(t, 4.0, cfgs[1].Alpha)
	assert.Equal(t, "custom", cfgs[1].OutputDir)
	assert.Equal(t, 1.0, cfgs[2].Alpha)
	assert.Equal(t, filepath.Join("coupling", "step3"), cfgs[2].OutputDir)
	for _, c := range cfgs {
		assert.Equal(t, 64, c.N)
		assert.Equal(t, 3, c.SnapshotInterval)
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: empty\n"))
	assert.ErrorContains(t, err, "no steps")

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	s, err := LoadScenario(writeScenario(t, "steps:\n  - name: bad\n    N: 64\n"))
	require.NoError(t, err)
	_, err = s.Resolve()
	assert.ErrorIs(t, err, config.ErrMissingField)
}

func TestRunScenario(t *testing.T) {
	chdir(t, t.TempDir())

	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	outs, err := RunScenario(context.Background(), s, experiment.Options{Writer: experiment.FileWriter{}})
	require.NoError(t, err)
	require.Len(t, outs, 3)
	assert.Equal(t, 6, outs[0].Result.History.Len())
	assert.FileExists(t, filepath.Join("coupling", "weak", "metadata.json"))
	assert.FileExists(t, filepath.Join("custom", "metadata.json"))
}

func TestRunScenario_StopsOnFailure(t *testing.T) {
	body := `
name: unstable
defaults:
  L: 20
  N: 64
  num_steps: 5
  T_param: 1.0
  alpha: 1.0
  check_finite: true
steps:
  - name: ok
    d_tau: 0.001
  - name: blowup
    d_tau: 1.0e300
  - name: never
    d_tau: 0.001
`
	chdir(t, t.TempDir())
	s, err := LoadScenario(writeScenario(t, body))
	require.NoError(t, err)

	outs, err := RunScenario(context.Background(), s, experiment.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrNonFinite)
	assert.Contains(t, err.Error(), "blowup")
	assert.Len(t, outs, 2)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
