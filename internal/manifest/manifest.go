// Package manifest records the outcome of a pipeline run as TOML.
package manifest

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/entran/schema"
	"github.com/pelletier/go-toml/v2"
)

// Manifest is the run-manifest.toml document.
type Manifest struct {
	RunID     string                `toml:"run_id"`
	Repo      string                `toml:"repo"`
	Branch    string                `toml:"branch"`
	Threshold int                   `toml:"threshold"`
	Started   time.Time             `toml:"started"`
	Finished  time.Time             `toml:"finished"`
	Counts    Counts                `toml:"counts"`
	Stages    []schema.StageOutcome `toml:"stages"`
}

// Counts summarizes the tables a run produced.
type Counts struct {
	Commits     int `toml:"commits"`
	Candidates  int `toml:"candidates"`
	Buildable   int `toml:"buildable"`
	Artifacts   int `toml:"artifacts"`
	Benchmarked int `toml:"benchmarked"`
}

// New starts a manifest for a run.
func New(runID, repo, branch string, threshold int, started time.Time) *Manifest {
	return &Manifest{RunID: runID, Repo: repo, Branch: branch, Threshold: threshold, Started: started}
}

// Record appends the outcome of a stage.
func (m *Manifest) Record(stage schema.Stage, started time.Time, err error) {
	outcome := schema.StageOutcome{Stage: stage, Started: started, Duration: time.Since(started)}
	if err != nil {
		outcome.Error = err.Error()
	}
	m.Stages = append(m.Stages, outcome)
}

// Failed returns the stages that ended with an error.
func (m *Manifest) Failed() []schema.StageOutcome {
	var failed []schema.StageOutcome
	for _, s := range m.Stages {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// Write stores the manifest at path.
func (m *Manifest) Write(path string) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a manifest written by Write.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
