package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/entran/core/metrics"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/schema"
)

// MetricsOutput holds the three metric tables. A table whose inputs were
// missing is nil and was not written.
type MetricsOutput struct {
	Energy   []schema.EnergyRecord
	Perf     []schema.PerfRecord
	Combined []schema.CombinedRecord
}

// loadYearIndex reads the commit table into a year index.
func loadYearIndex(cfg *contract.Config) (*metrics.YearIndex, error) {
	dates, err := outwriter.ReadCommitDates(cfg.Layout.CommitsInsights())
	if err != nil {
		return nil, err
	}
	idx := metrics.NewYearIndexFromDates(dates)
	collisions := idx.Collisions()
	for _, short := range slices.Sorted(maps.Keys(collisions)) {
		contract.LogWarn("Short id "+short+" is ambiguous", fmt.Errorf("shared by %s", strings.Join(collisions[short], ", ")))
	}
	return idx, nil
}

// runMetrics extracts energy, then performance, then joins them. Each table
// is written only when its inputs exist: energy needs the benchmark logs and
// the commit table, performance needs the result files, and the join needs
// both. Without a commit table performance years are unknown.
func runMetrics(ctx context.Context, cfg *contract.Config) (*MetricsOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Layout.Root, 0o755); err != nil {
		return nil, err
	}
	output := &MetricsOutput{}

	years, yearsErr := loadYearIndex(cfg)
	if yearsErr != nil {
		contract.LogWarn("Energy data skipped, years unknown", yearsErr)
	} else {
		energy, err := metrics.ExtractEnergy(cfg.Layout.JMHResultsDir(), years)
		switch {
		case errors.Is(err, contract.ErrMissingInput):
			contract.LogWarn("Energy data skipped", err)
		case err != nil:
			return nil, err
		default:
			output.Energy = nonNil(energy)
			if err := outwriter.WriteEnergyCSV(cfg.Layout.EnergyData(), output.Energy); err != nil {
				return nil, fmt.Errorf("failed to write energy table: %w", err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	perf, err := metrics.ExtractPerf(cfg.Layout.PerfDataDir(), years)
	switch {
	case errors.Is(err, contract.ErrMissingInput):
		contract.LogWarn("Performance data skipped", err)
	case err != nil:
		return nil, err
	default:
		output.Perf = nonNil(perf)
		if err := outwriter.WritePerfCSV(cfg.Layout.PerfData(), output.Perf); err != nil {
			return nil, fmt.Errorf("failed to write performance table: %w", err)
		}
	}

	if output.Energy == nil || output.Perf == nil {
		contract.LogWarn("Combined table skipped", fmt.Errorf("%w: energy or performance table", contract.ErrMissingInput))
		return output, nil
	}
	output.Combined = metrics.Join(output.Perf, metrics.EnergyAverages(output.Energy))
	if err := outwriter.WriteCombinedCSV(cfg.Layout.Combined(), output.Combined); err != nil {
		return nil, fmt.Errorf("failed to write combined table: %w", err)
	}
	contract.LogInfo("Extracted %d energy and %d performance rows", len(output.Energy), len(output.Perf))
	return output, nil
}

// nonNil marks an extracted table as present even when it has no rows.
func nonNil[T any](records []T) []T {
	if records == nil {
		return []T{}
	}
	return records
}
