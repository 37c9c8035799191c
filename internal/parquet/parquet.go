// Package parquet provides data structures and functions for exporting entran
// results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/entran/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single pipeline run with metadata.
// This struct maps to the entran_runs database table.
type Run struct {
	// RunID is the UUID of the run
	RunID string `parquet:"run_id,snappy"`

	// Repo is the clone URL of the analyzed repository
	Repo string `parquet:"repo,snappy"`

	// Branch is the branch whose history was walked
	Branch string `parquet:"branch,snappy"`

	// Threshold is the refactoring count a commit needed to be rebuilt
	Threshold int32 `parquet:"threshold,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalCommits is the number of commits recorded for this run
	TotalCommits int32 `parquet:"total_commits,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CommitMetric is the joined outcome of one commit in a run.
// This struct maps to the entran_commit_metrics database table.
type CommitMetric struct {
	RunID        string    `parquet:"run_id,snappy"`
	CommitHash   string    `parquet:"commit_hash,snappy"`
	ShortID      string    `parquet:"short_id,snappy"`
	Year         string    `parquet:"year,snappy"`
	Refactorings int32     `parquet:"refactorings,snappy"`
	BuildStatus  string    `parquet:"build_status,snappy"`
	Score        *float64  `parquet:"score,optional,snappy"`
	EnergyAvg    *float64  `parquet:"energy_avg,optional,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// Combined is one row of the energy and performance table.
type Combined struct {
	ShortID   string   `parquet:"commit_hash,snappy"`
	Score     *float64 `parquet:"score,optional,snappy"`
	Year      string   `parquet:"year,snappy"`
	EnergyAvg *float64 `parquet:"energy_avg_uj,optional,snappy"`
}

// write creates outputPath and writes data with a schema inferred from T.
func write[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return write(data, outputPath)
}

// WriteCommitMetricsParquet writes a slice of CommitMetric structs to a Parquet file.
func WriteCommitMetricsParquet(data []CommitMetric, outputPath string) error {
	return write(data, outputPath)
}

// WriteCombinedParquet writes the energy and performance table to a Parquet file.
func WriteCombinedParquet(data []Combined, outputPath string) error {
	return write(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Repo:          record.Repo,
			Branch:        record.Branch,
			Threshold:     record.Threshold,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalCommits:  record.TotalCommits,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertCommitMetricRecords converts schema.CommitMetricRecord to CommitMetric for Parquet export.
func ConvertCommitMetricRecords(records []schema.CommitMetricRecord) []CommitMetric {
	result := make([]CommitMetric, len(records))
	for i, record := range records {
		result[i] = CommitMetric{
			RunID:        record.RunID,
			CommitHash:   record.CommitHash,
			ShortID:      record.ShortID,
			Year:         record.Year,
			Refactorings: record.Refactorings,
			BuildStatus:  record.BuildStatus,
			Score:        record.Score,
			EnergyAvg:    record.EnergyAvg,
			RecordedAt:   record.RecordedAt,
		}
	}
	return result
}

// ConvertCombinedRecords converts joined rows; a non-numeric score and an
// empty or unparsable energy average become null.
func ConvertCombinedRecords(records []schema.CombinedRecord) []Combined {
	result := make([]Combined, len(records))
	for i, record := range records {
		result[i] = Combined{
			ShortID: record.ShortID,
			Year:    record.Year,
		}
		if record.HasScore() {
			score := record.Score
			result[i].Score = &score
		}
		if v, err := strconv.ParseFloat(record.EnergyAvg, 64); err == nil {
			result[i].EnergyAvg = &v
		}
	}
	return result
}
