package schema

import "time"

// RunRecord represents a row from the entran_runs table.
type RunRecord struct {
	RunID         string
	Repo          string
	Branch        string
	Threshold     int32
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalCommits  int32
	ConfigParams  *string
}

// CommitMetricRecord represents a row from the entran_commit_metrics table.
// Score and EnergyAvg are nil when the commit never produced that metric.
type CommitMetricRecord struct {
	RunID        string
	CommitHash   string
	ShortID      string
	Year         string
	Refactorings int32
	BuildStatus  string
	Score        *float64
	EnergyAvg    *float64
	RecordedAt   time.Time
}
