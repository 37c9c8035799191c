package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/parquet"
)

// ExecuteResultsExport exports the global results store to Parquet files.
func ExecuteResultsExport(outputFile string) error {
	return ExportResults(os.Stdout, Manager.GetResultStore(), outputFile)
}

// ExportResults writes the runs and commit metrics of store to
// <outputFile>.runs.parquet and <outputFile>.commit_metrics.parquet.
func ExportResults(w io.Writer, store contract.ResultStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("results store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get results status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no recorded runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total commit records: %d\n", status.TotalCommitsRecorded)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	metrics, err := store.GetAllCommitMetrics()
	if err != nil {
		return fmt.Errorf("failed to retrieve commit metrics: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	metricsFile := outputFile + ".commit_metrics.parquet"
	parquetMetrics := parquet.ConvertCommitMetricRecords(metrics)
	if err := parquet.WriteCommitMetricsParquet(parquetMetrics, metricsFile); err != nil {
		return fmt.Errorf("failed to write commit metrics: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d commit records to: %s\n", len(parquetMetrics), metricsFile)
	return nil
}
