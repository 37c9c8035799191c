package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/manifest"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/schema"
)

// ExecuteRun runs every stage in order. A failing stage is recorded in the
// manifest and the run moves on, since later stages skip themselves when
// their inputs are missing. Only cancellation ends the run early. The
// joined metrics are recorded in the results store when one is configured.
func ExecuteRun(ctx context.Context, cfg *contract.Config, deps Deps) error {
	started := time.Now()
	if err := cfg.Layout.Ensure(); err != nil {
		return err
	}
	ctx = withSuppressOutput(ctx)

	// --- 0. Begin Run Tracking (if configured) ---
	store := resultStore(deps)
	runID := uuid.NewString()
	if store != nil {
		id, err := store.BeginRun(started, cfg.RepoURL, cfg.Branch, cfg.Threshold, runParams(cfg))
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if id != "" {
			runID = id
			ctx = withRunID(ctx, id)
		}
	}

	// --- 1. Stages ---
	m := manifest.New(runID, cfg.RepoURL, cfg.Branch, cfg.Threshold, started)
	var stageErrs []error
	for _, stage := range schema.AllStages {
		if ctx.Err() != nil {
			stageErrs = append(stageErrs, ctx.Err())
			break
		}
		stageStart := time.Now()
		err := stageExecutors[stage](ctx, cfg, deps)
		m.Record(stage, stageStart, err)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Stage %s failed", stage), err)
			stageErrs = append(stageErrs, fmt.Errorf("stage %s: %w", stage, err))
		}
	}
	runErr := errors.Join(stageErrs...)

	// --- 2. Manifest and tracking ---
	m.Counts = collectCounts(cfg)
	m.Finished = time.Now()
	if err := m.Write(cfg.Layout.Manifest()); err != nil {
		contract.LogWarn("Failed to write run manifest", err)
	}
	if id, ok := getRunID(ctx); ok {
		recordRun(store, id, cfg, m.Finished)
	}

	if runErr != nil {
		return runErr
	}
	contract.LogInfo("✅ Run %s completed in %v", runID, m.Finished.Sub(started).Round(time.Millisecond))
	return nil
}

func resultStore(deps Deps) contract.ResultStore {
	if deps.Results == nil {
		return nil
	}
	return deps.Results.GetResultStore()
}

func runParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"repo_dir":     cfg.RepoDir,
		"harness_dir":  cfg.HarnessDir,
		"artifact_dir": cfg.ArtifactDir,
		"results_dir":  cfg.Layout.Root,
		"group_id":     cfg.Coordinates.GroupID,
		"artifact_id":  cfg.Coordinates.ArtifactID,
		"version":      cfg.Coordinates.Version,
		"jvm_args":     cfg.JVMArgs,
	}
}

// collectCounts summarizes whatever tables the run managed to produce.
func collectCounts(cfg *contract.Config) manifest.Counts {
	var counts manifest.Counts
	commits, err := outwriter.ReadCommitsCSV(cfg.Layout.CommitsInsights())
	if err != nil {
		return counts
	}
	counts.Commits = len(commits)
	counts.Candidates = len(SelectCandidates(commits, cfg.Threshold))
	if builds, err := outwriter.ReadBuildStatusCSV(cfg.Layout.BuildStatus()); err == nil {
		counts.Buildable = len(SelectBuildable(commits, builds, cfg.Threshold))
	}
	if artifacts, err := outwriter.ReadArtifactsCSV(cfg.Layout.Artifacts()); err == nil {
		counts.Artifacts = len(artifacts)
	}
	if combined, err := outwriter.ReadCombinedCSV(cfg.Layout.Combined()); err == nil {
		counts.Benchmarked = len(combined)
	}
	return counts
}

// commitMetrics joins the build status of every candidate with its metrics.
// Score and energy stay nil for commits that never produced them.
func commitMetrics(cfg *contract.Config, now time.Time) ([]schema.CommitMetricRecord, int, error) {
	commits, err := outwriter.ReadCommitsCSV(cfg.Layout.CommitsInsights())
	if err != nil {
		return nil, 0, err
	}
	status := make(map[string]schema.BuildStatus)
	if builds, err := outwriter.ReadBuildStatusCSV(cfg.Layout.BuildStatus()); err == nil {
		for _, b := range builds {
			status[b.Commit] = b.Status
		}
	}
	combined := make(map[string]schema.CombinedRecord)
	if records, err := outwriter.ReadCombinedCSV(cfg.Layout.Combined()); err == nil {
		for _, r := range records {
			combined[r.ShortID] = r
		}
	}

	var out []schema.CommitMetricRecord
	for _, c := range SelectCandidates(commits, cfg.Threshold) {
		short := schema.ShortID(c.Hash)
		record := schema.CommitMetricRecord{
			CommitHash:   c.Hash,
			ShortID:      short,
			Year:         c.Year(),
			Refactorings: int32(c.Refactorings),
			BuildStatus:  string(status[c.Hash]),
			RecordedAt:   now,
		}
		if r, ok := combined[short]; ok {
			if r.HasScore() {
				score := r.Score
				record.Score = &score
			}
			if avg, err := strconv.ParseFloat(r.EnergyAvg, 64); err == nil {
				record.EnergyAvg = &avg
			}
		}
		out = append(out, record)
	}
	return out, len(commits), nil
}

// recordRun stores the candidate metrics and closes the run. Failures are
// logged without failing the run.
func recordRun(store contract.ResultStore, runID string, cfg *contract.Config, finished time.Time) {
	if store == nil {
		return
	}
	records, total, err := commitMetrics(cfg, finished)
	if err != nil {
		contract.LogWarn("Run tracking skipped commit metrics", err)
	}
	for _, r := range records {
		if err := store.RecordCommitMetrics(runID, r); err != nil {
			contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", r.ShortID), err)
		}
	}
	if err := store.EndRun(runID, finished, total); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}
