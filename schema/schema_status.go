package schema

import "time"

// ResultsStatus represents the status of the results store.
type ResultsStatus struct {
	Backend              string           `json:"backend"`
	Connected            bool             `json:"connected"`
	TotalRuns            int              `json:"total_runs"`
	LastRunID            string           `json:"last_run_id"`
	LastRunTime          time.Time        `json:"last_run_time"`
	OldestRunTime        time.Time        `json:"oldest_run_time"`
	TotalCommitsRecorded int              `json:"total_commits_recorded"`
	TableSizes           map[string]int64 `json:"table_sizes"`
}

// StageOutcome records how a single pipeline stage ended.
type StageOutcome struct {
	Stage    Stage         `toml:"stage" json:"stage"`
	Started  time.Time     `toml:"started" json:"started"`
	Duration time.Duration `toml:"duration" json:"duration"`
	Error    string        `toml:"error,omitempty" json:"error,omitempty"`
}

// OK reports whether the stage completed without error.
func (s StageOutcome) OK() bool {
	return s.Error == ""
}
