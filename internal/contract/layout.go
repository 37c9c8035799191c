package contract

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout names every file and directory the pipeline writes under the results directory.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Root: dir}
}

func (l Layout) path(name string) string { return filepath.Join(l.Root, name) }

// RMinerReport is the refactoring detection output.
func (l Layout) RMinerReport() string { return l.path("rminer_result.json") }

// CommitJarsDir holds the archived jars, one per rebuilt commit.
func (l Layout) CommitJarsDir() string { return l.path("commit-jars") }

// JMHResultsDir holds the benchmark text logs.
func (l Layout) JMHResultsDir() string { return l.path("jmh-results") }

// PerfDataDir holds the benchmark JSON result files.
func (l Layout) PerfDataDir() string { return l.path("perf-data") }

// CommitsInsights is the commit table.
func (l Layout) CommitsInsights() string { return l.path("commits-insights.csv") }

// TypeCounts is the refactoring type frequency table.
func (l Layout) TypeCounts() string { return l.path("refs-type-counts.csv") }

// BuildStatus is the buildability table produced by the first build pass.
func (l Layout) BuildStatus() string { return l.path("build-status.csv") }

// Artifacts lists archived jars and their digests.
func (l Layout) Artifacts() string { return l.path("artifacts.csv") }

// EnergyData is the energy table.
func (l Layout) EnergyData() string { return l.path("energy-data.csv") }

// PerfData is the performance table.
func (l Layout) PerfData() string { return l.path("perf-data.csv") }

// Combined is the joined performance and energy table.
func (l Layout) Combined() string { return l.path("energy-perf-cmb.csv") }

// SuccessfulCommits is the commit table restricted to successfully built commits.
func (l Layout) SuccessfulCommits() string { return l.path("summary-successful-commits.csv") }

// RefactoringMapping lists refactoring types per successful commit.
func (l Layout) RefactoringMapping() string { return l.path("commit-refacts-mapping.csv") }

// Plot is the energy and performance chart.
func (l Layout) Plot() string { return l.path("plot-output.png") }

// Dashboard is the static HTML summary.
func (l Layout) Dashboard() string { return l.path("results-summary.html") }

// Manifest records the outcome of a full run.
func (l Layout) Manifest() string { return l.path("run-manifest.toml") }

// Bundle is the compressed archive of the results directory.
func (l Layout) Bundle() string { return l.path("results.tar.zst") }

// PerfResultFile is the JMH JSON output for a short identifier.
func (l Layout) PerfResultFile(shortID string) string {
	return filepath.Join(l.PerfDataDir(), shortID+"-perf-data.json")
}

// JMHLogFile is the JMH text output for a short identifier.
func (l Layout) JMHLogFile(shortID string) string {
	return filepath.Join(l.JMHResultsDir(), shortID+"-jmh-output.txt")
}

// Ensure creates the results directory and its subdirectories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.CommitJarsDir(), l.JMHResultsDir(), l.PerfDataDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// RequireFile returns ErrMissingInput when path does not exist.
func RequireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return err
	}
	return nil
}
