package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/entran/core/agg"
	"github.com/huangsam/entran/core/refactor"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/internal/pom"
	"github.com/huangsam/entran/schema"
)

// baselineInstallArgs installs the checked-out head without running tests.
var baselineInstallArgs = []string{"clean", "install", "-DskipTests"}

// HistoryOutput is the commit table and the type frequencies of the report.
type HistoryOutput struct {
	Commits []schema.CommitRecord
	Types   []schema.TypeCount
}

// requireRepo returns ErrMissingInput when the repository has not been cloned.
func requireRepo(cfg *contract.Config) error {
	info, err := os.Stat(cfg.RepoDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: repository %s", contract.ErrMissingInput, cfg.RepoDir)
	}
	return nil
}

// readCommitTable reads the commit table written by the history stage.
func readCommitTable(cfg *contract.Config) ([]schema.CommitRecord, error) {
	commits, err := outwriter.ReadCommitsCSV(cfg.Layout.CommitsInsights())
	if err != nil {
		return nil, fmt.Errorf("commit table: %w", err)
	}
	return commits, nil
}

// runClone clones the repository unless it is already present. With
// InstallBaseline the head is installed under the configured coordinates.
func runClone(ctx context.Context, cfg *contract.Config, deps Deps) error {
	if err := cfg.ValidateRepoURL(); err != nil {
		return err
	}
	if requireRepo(cfg) == nil {
		contract.LogInfo("Repository already present at %s", cfg.RepoDir)
	} else {
		if err := deps.Git.Clone(ctx, cfg.RepoURL, cfg.RepoDir); err != nil {
			return fmt.Errorf("failed to clone repository: %w", err)
		}
		contract.LogInfo("Repository cloned into %s", cfg.RepoDir)
	}
	if !cfg.InstallBaseline {
		return nil
	}

	if err := cfg.ValidateCoordinates(); err != nil {
		return err
	}
	if err := pom.SetCoordinates(filepath.Join(cfg.RepoDir, pom.FileName), cfg.Coordinates); err != nil {
		return fmt.Errorf("failed to rewrite coordinates: %w", err)
	}
	if err := deps.Runner.Run(ctx, cfg.RepoDir, nil, "mvn", baselineInstallArgs...); err != nil {
		contract.LogWarn("Baseline install failed", err)
		return nil
	}
	contract.LogInfo("Baseline installed as %s:%s:%s", cfg.Coordinates.GroupID, cfg.Coordinates.ArtifactID, cfg.Coordinates.Version)
	return nil
}

// runRefactorings runs RefactoringMiner over every commit of the branch. A
// tool failure is logged and leaves the report absent, so the stages that
// read it skip themselves.
func runRefactorings(ctx context.Context, cfg *contract.Config, deps Deps) error {
	if err := requireRepo(cfg); err != nil {
		return err
	}
	if err := cfg.Layout.Ensure(); err != nil {
		return err
	}
	report := cfg.Layout.RMinerReport()
	args := []string{"-a", cfg.RepoDir, cfg.Branch, "-json", report}
	if err := deps.Runner.Run(ctx, cfg.Layout.Root, nil, cfg.RMinerPath, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		contract.LogWarn("RefactoringMiner failed", err)
		return nil
	}
	contract.LogInfo("RefactoringMiner results saved in %s", report)
	return nil
}

// runHistory walks the branch history, attaches the per-commit refactoring
// counts of the report and writes the commit and type frequency tables.
func runHistory(ctx context.Context, cfg *contract.Config, deps Deps) (*HistoryOutput, error) {
	if err := requireRepo(cfg); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(cfg.Layout.RMinerReport())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", contract.ErrMissingInput, cfg.Layout.RMinerReport())
		}
		return nil, err
	}

	commits, err := agg.ExtractHistory(ctx, deps.Git, cfg.RepoDir, cfg.Branch)
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", cfg.Branch, err)
	}

	counts, err := refactor.CountPerCommit(bytes.NewReader(data))
	if err != nil {
		if !errors.Is(err, contract.ErrMalformedReport) {
			return nil, err
		}
		contract.LogWarn("Refactoring report is malformed, counts default to 0", err)
		counts = map[string]int{}
	}

	output := &HistoryOutput{
		Commits: agg.AttachRefactorings(commits, counts),
		Types:   refactor.CountTypes(data),
	}
	if err := outwriter.WriteCommitsCSV(cfg.Layout.CommitsInsights(), output.Commits); err != nil {
		return nil, fmt.Errorf("failed to write commit table: %w", err)
	}
	if err := outwriter.WriteTypeCountsCSV(cfg.Layout.TypeCounts(), output.Types); err != nil {
		return nil, fmt.Errorf("failed to write type counts: %w", err)
	}

	insertions, deletions := agg.Totals(output.Commits)
	contract.LogInfo("Recorded %d commits (+%d/-%d lines)", len(output.Commits), insertions, deletions)
	return output, nil
}
