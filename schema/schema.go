// Package schema has the data records that flow between pipeline stages.
package schema

import "time"

// ShortIDLength is the number of leading hex characters used to key artifacts.
const ShortIDLength = 8

// UnknownYear is used when a short identifier has no year in the commit table.
const UnknownYear = "Unknown"

// ShortID truncates a commit hash (or artifact file name) to its short identifier.
func ShortID(hash string) string {
	if len(hash) < ShortIDLength {
		return hash
	}
	return hash[:ShortIDLength]
}

// CommitRecord is one commit of the target branch, in traversal order.
type CommitRecord struct {
	Hash          string    `json:"commit"`
	Date          time.Time `json:"date"`
	FilesModified int       `json:"files_modified"`
	Insertions    int       `json:"insertions"`
	Deletions     int       `json:"deletions"`
	Refactorings  int       `json:"refactorings_found"`
}

// Year returns the four-digit year of the commit date.
func (c CommitRecord) Year() string {
	return c.Date.Format("2006")
}

// TypeCount is the number of occurrences of one refactoring type in a report.
type TypeCount struct {
	Type        string `json:"refactorings_found"`
	Occurrences int    `json:"occurrences"`
}

// BuildRecord is the outcome of the buildability pass for one commit.
// Cause is only set when Status is BuildFailed.
type BuildRecord struct {
	Commit       string      `json:"commit"`
	Refactorings int         `json:"refactorings_found"`
	Status       BuildStatus `json:"status"`
	Cause        string      `json:"error_cause,omitempty"`
}

// ArtifactRecord is a jar archived from a rebuilt commit.
type ArtifactRecord struct {
	Commit string `json:"commit"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Digest string `json:"blake2b"`
}

// ShortID returns the short identifier of the artifact's commit.
func (a ArtifactRecord) ShortID() string {
	return ShortID(a.Commit)
}

// BenchmarkResult points at the files produced by one benchmark run.
type BenchmarkResult struct {
	ShortID    string `json:"short_id"`
	Jar        string `json:"jar"`
	LogPath    string `json:"log_path"`
	ResultPath string `json:"result_path"`
}

// EnergyRecord is the energy summary extracted from one benchmark log.
type EnergyRecord struct {
	ShortID string  `json:"hash"`
	Average float64 `json:"average"`
	Count   int     `json:"total_numbers"`
	Year    string  `json:"year"`
}

// PerfRecord is the performance score extracted from one benchmark result file.
// RawScore is set when the selected score is not a finite number; Score is
// then zero and meaningless.
type PerfRecord struct {
	ShortID  string  `json:"commit_hash"`
	Score    float64 `json:"score"`
	RawScore string  `json:"raw_score,omitempty"`
	Year     string  `json:"year"`
}

// HasScore reports whether Score holds a numeric value.
func (r PerfRecord) HasScore() bool { return r.RawScore == "" }

// CombinedRecord is a performance row joined with its energy average.
// EnergyAvg is empty when no energy data exists for the short identifier.
type CombinedRecord struct {
	ShortID   string  `json:"commit_hash"`
	Score     float64 `json:"score"`
	RawScore  string  `json:"raw_score,omitempty"`
	Year      string  `json:"year"`
	EnergyAvg string  `json:"energy_avg_uj"`
}

// HasScore reports whether Score holds a numeric value.
func (r CombinedRecord) HasScore() bool { return r.RawScore == "" }
