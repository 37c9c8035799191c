// Package core has the pipeline stages and their orchestration.
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/entran/core/refactor"
	"github.com/huangsam/entran/internal/bundle"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/schema"
)

// Deps are the collaborators every stage runs against.
type Deps struct {
	Git     contract.GitClient
	Runner  contract.CommandRunner
	Results contract.ResultManager // may be nil
	Out     *outwriter.OutWriter
}

// ExecutorFunc defines the function signature for executing a pipeline stage.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, deps Deps) error

// stageExecutors maps each stage to its entry point, for the full run.
var stageExecutors = map[schema.Stage]ExecutorFunc{
	schema.StageClone:        ExecuteClone,
	schema.StageRefactorings: ExecuteRefactorings,
	schema.StageHistory:      ExecuteHistory,
	schema.StageBuild:        ExecuteBuild,
	schema.StageBench:        ExecuteBench,
	schema.StageMetrics:      ExecuteMetrics,
	schema.StageReport:       ExecuteReport,
}

// ExecuteClone clones the target repository and optionally installs it as the
// baseline artifact.
func ExecuteClone(ctx context.Context, cfg *contract.Config, deps Deps) error {
	contract.LogStage(schema.StageClone, cfg.RepoURL)
	return runClone(ctx, cfg, deps)
}

// ExecuteRefactorings runs refactoring detection over the branch and prints
// the type frequencies of the new report.
func ExecuteRefactorings(ctx context.Context, cfg *contract.Config, deps Deps) error {
	start := time.Now()
	contract.LogStage(schema.StageRefactorings, cfg.Branch)
	if err := runRefactorings(ctx, cfg, deps); err != nil {
		return err
	}
	if shouldSuppressOutput(ctx) {
		return nil
	}
	data, err := os.ReadFile(cfg.Layout.RMinerReport())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return deps.Out.WriteTypeCounts(refactor.CountTypes(data), cfg, time.Since(start))
}

// ExecuteHistory writes the commit table and prints it.
func ExecuteHistory(ctx context.Context, cfg *contract.Config, deps Deps) error {
	start := time.Now()
	contract.LogStage(schema.StageHistory, cfg.Branch)
	output, err := runHistory(ctx, cfg, deps)
	if err != nil {
		return err
	}
	if shouldSuppressOutput(ctx) {
		return nil
	}
	return deps.Out.WriteCommits(output.Commits, cfg, time.Since(start))
}

// ExecuteBuild runs both build passes and prints the build status table.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, deps Deps) error {
	start := time.Now()
	contract.LogStage(schema.StageBuild, fmt.Sprintf("threshold %d", cfg.Threshold))
	output, err := runBuild(ctx, cfg, deps)
	if err != nil {
		return err
	}
	contract.LogInfo("📦 Archived %d jars from %d buildable commits", len(output.Artifacts), output.Buildable())
	if shouldSuppressOutput(ctx) {
		return nil
	}
	return deps.Out.WriteBuilds(output.Builds, cfg, time.Since(start))
}

// ExecuteBench benchmarks every archived jar.
func ExecuteBench(ctx context.Context, cfg *contract.Config, deps Deps) error {
	start := time.Now()
	contract.LogStage(schema.StageBench, cfg.HarnessDir)
	results, err := runBench(ctx, cfg, deps)
	if err != nil {
		return err
	}
	contract.LogInfo("⏱️  Benchmarked %d jars in %v", len(results), time.Since(start).Round(time.Millisecond))
	return nil
}

// ExecuteMetrics extracts energy and performance data and prints the joined table.
func ExecuteMetrics(ctx context.Context, cfg *contract.Config, deps Deps) error {
	start := time.Now()
	contract.LogStage(schema.StageMetrics, cfg.Layout.Root)
	output, err := runMetrics(ctx, cfg)
	if err != nil {
		return err
	}
	if shouldSuppressOutput(ctx) || output.Combined == nil {
		return nil
	}
	return deps.Out.WriteCombined(output.Combined, cfg, time.Since(start))
}

// ExecuteReport writes the summary tables, the chart and the dashboard.
func ExecuteReport(ctx context.Context, cfg *contract.Config, _ Deps) error {
	contract.LogStage(schema.StageReport, cfg.PlotTitle)
	if err := runReport(ctx, cfg); err != nil {
		return err
	}
	contract.LogInfo("📊 Wrote %s", cfg.Layout.Dashboard())
	return nil
}

// ExecuteBundle archives the results directory.
func ExecuteBundle(_ context.Context, cfg *contract.Config, _ Deps) error {
	n, err := bundle.Write(cfg.Layout.Root, cfg.Layout.Bundle())
	if err != nil {
		return fmt.Errorf("failed to bundle results: %w", err)
	}
	contract.LogInfo("🗜️  Bundled %d files into %s", n, cfg.Layout.Bundle())
	return nil
}
