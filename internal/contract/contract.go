// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"io"
	"time"

	"github.com/huangsam/entran/schema"
)

// GitClient defines the Git operations the pipeline needs against the target repository.
// This allows the pipeline to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository Setup ---

	// Clone clones url into dir.
	Clone(ctx context.Context, url, dir string) error

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// --- Working Tree ---

	// Stash stashes local changes, including untracked files.
	Stash(ctx context.Context, repoPath string) error

	// Clean removes untracked files and directories.
	Clean(ctx context.Context, repoPath string) error

	// Checkout moves the working tree to the given ref.
	Checkout(ctx context.Context, repoPath, ref string) error

	// --- History ---

	// GetHistoryLog returns the oldest-first numstat log of a branch.
	GetHistoryLog(ctx context.Context, repoPath, branch string) ([]byte, error)
}

// CommandRunner runs external tools such as Maven, Java and RefactoringMiner.
type CommandRunner interface {
	// Run executes name with args in dir. When stdout is nil, standard output
	// is only kept for error reporting.
	Run(ctx context.Context, dir string, stdout io.Writer, name string, args ...string) error
}

// ResultManager defines the interface for managing the results store.
// This allows the persistence layer to be mocked for testing.
type ResultManager interface {
	GetResultStore() ResultStore
}

// ResultStore defines the interface for tracking pipeline runs and per-commit metrics.
type ResultStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, repo, branch string, threshold int, configParams map[string]any) (string, error)

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalCommits int) error

	// RecordCommitMetrics stores the joined metrics of one commit
	RecordCommitMetrics(runID string, record schema.CommitMetricRecord) error

	// GetStatus returns status information about the results store
	GetStatus() (schema.ResultsStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllCommitMetrics returns every recorded commit metric row
	GetAllCommitMetrics() ([]schema.CommitMetricRecord, error)

	// Close closes the underlying connection
	Close() error
}
