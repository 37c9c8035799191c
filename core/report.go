package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/entran/core/refactor"
	"github.com/huangsam/entran/internal/chart"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/internal/report"
)

// dashboardTitle is used when no plot title is configured.
const dashboardTitle = "Energy and performance across refactored commits"

// runReport writes the successful commit summary, the refactoring mapping,
// the chart and the dashboard, in that order. The dashboard is only written
// when every table it shows exists.
func runReport(ctx context.Context, cfg *contract.Config) error {
	commits, err := readCommitTable(cfg)
	if err != nil {
		return err
	}
	builds, err := outwriter.ReadBuildStatusCSV(cfg.Layout.BuildStatus())
	if err != nil {
		return fmt.Errorf("build status: %w", err)
	}

	successful := SelectBuildable(commits, builds, cfg.Threshold)
	if err := outwriter.WriteSuccessfulCommitsCSV(cfg.Layout.SuccessfulCommits(), successful); err != nil {
		return fmt.Errorf("failed to write successful commits: %w", err)
	}

	hashes := make([]string, 0, len(successful))
	for _, c := range successful {
		hashes = append(hashes, c.Hash)
	}
	if err := outwriter.WriteMappingCSV(cfg.Layout.RefactoringMapping(), refactor.MappingTable(hashes, typesByCommit(cfg))); err != nil {
		return fmt.Errorf("failed to write refactoring mapping: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	writePlot(cfg)

	title := cfg.PlotTitle
	if title == "" {
		title = dashboardTitle
	}
	return report.WriteDashboard(cfg.Layout.Dashboard(), title, report.Sources(cfg.Layout), cfg.Layout.Plot())
}

// typesByCommit reads the structured report. A missing or malformed report
// yields an empty mapping.
func typesByCommit(cfg *contract.Config) map[string][]string {
	f, err := os.Open(cfg.Layout.RMinerReport())
	if err != nil {
		contract.LogWarn("Refactoring mapping skipped", err)
		return nil
	}
	defer func() { _ = f.Close() }()

	types, err := refactor.TypesByCommit(f)
	if err != nil {
		contract.LogWarn("Refactoring mapping skipped", err)
		return nil
	}
	return types
}

// writePlot renders the chart from the combined table. Problems are logged;
// the dashboard still links the image path.
func writePlot(cfg *contract.Config) {
	records, err := outwriter.ReadCombinedCSV(cfg.Layout.Combined())
	if err != nil {
		contract.LogWarn("Plot skipped", err)
		return
	}
	if err := chart.RenderFile(cfg.Layout.Plot(), cfg.PlotTitle, records); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			contract.LogInfo("No benchmarked commits to plot")
			return
		}
		contract.LogWarn("Plot skipped", err)
		return
	}
	contract.LogInfo("Plot saved to %s", cfg.Layout.Plot())
}
