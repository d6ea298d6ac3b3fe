package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/experiment"
)

// Scenario is a scripted sequence of runs sharing common defaults.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Defaults    config.Config  `yaml:"defaults"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the scenario defaults for one run. An empty
// output_dir is derived from the scenario and step names.
type ScenarioStep struct {
	Name          string `yaml:"name"`
	config.Config `yaml:",inline"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// Resolve merges every step over the defaults. All steps are validated
// before any of them runs.
func (s *Scenario) Resolve() ([]*config.Resolved, error) {
	cfgs := make([]*config.Resolved, 0, len(s.Steps))
	for i, step := range s.Steps {
		merged := config.Merge(&s.Defaults, &step.Config)
		if merged.OutputDir == nil {
			merged.OutputDir = config.Ptr(s.stepDir(i, step))
		}

		r, err := merged.Resolve()
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		cfgs = append(cfgs, r)
	}
	return cfgs, nil
}

func (s *Scenario) stepDir(i int, step ScenarioStep) string {
	name := step.Name
	if name == "" {
		name = fmt.Sprintf("step%d", i+1)
	}
	root := s.Name
	if root == "" {
		root = "scenario"
	}
	return filepath.Join(root, name)
}

// RunScenario executes all steps in order and stops at the first failure.
// Outcomes of the steps that ran are returned either way.
func RunScenario(ctx context.Context, s *Scenario, opts experiment.Options) ([]*experiment.Outcome, error) {
	cfgs, err := s.Resolve()
	if err != nil {
		return nil, err
	}

	log := slog.Default().With("scenario", s.Name)
	outcomes := make([]*experiment.Outcome, 0, len(cfgs))
	for i, cfg := range cfgs {
		log.Info("running step", "step", i+1, "of", len(cfgs), "name", s.Steps[i].Name)

		out, err := experiment.New(cfg, opts).Run(ctx)
		if out != nil {
			outcomes = append(outcomes, out)
		}
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, s.Steps[i].Name, err)
		}
	}
	return outcomes, nil
}
