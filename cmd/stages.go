package cmd

import (
	"os"

	"github.com/huangsam/entran/core"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/spf13/cobra"
)

// pipelineDeps wires the local git client and tool runner into the stages.
// Tool output is echoed to stderr so stdout stays free for tables.
func pipelineDeps() core.Deps {
	return core.Deps{
		Git:     contract.NewLocalGitClient(),
		Runner:  contract.NewLocalRunner(os.Stderr),
		Results: resultManager,
		Out:     outwriter.NewOutWriter(),
	}
}

// stageRun adapts a stage executor to a cobra Run function.
func stageRun(exec core.ExecutorFunc, failure string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := exec(rootCtx, cfg, pipelineDeps()); err != nil {
			contract.LogFatal(failure, err)
		}
	}
}

// cloneCmd fetches the library under study.
var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Clone the library repository into repo-dir",
	Long: `Clone the configured repository. An existing clone is reused.

With --install-baseline the head is installed into the local Maven repository
under the configured coordinates, which the benchmark harness depends on.

Examples:
  # Clone XStream
  entran clone --repo-url https://github.com/x-stream/xstream.git

  # Clone and install the baseline
  entran clone --install-baseline --group-id com.thoughtworks.xstream --artifact-id xstream --artifact-version entran`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteClone, "Clone failed"),
}

// refactoringsCmd runs RefactoringMiner.
var refactoringsCmd = &cobra.Command{
	Use:   "refactorings",
	Short: "Detect refactorings across the branch history with RefactoringMiner",
	Long: `Run RefactoringMiner over every commit of the branch and write its JSON report
to rminer_result.json in the results directory. The type frequencies are printed.`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteRefactorings, "Refactoring detection failed"),
}

// historyCmd builds the commit table.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Build the commit table with churn and refactoring counts",
	Long: `Walk the branch history oldest first and record, per commit, the date,
files modified, insertions, deletions and the number of refactorings found.
The table is ordered by refactorings, most first.`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteHistory, "History extraction failed"),
}

// buildCmd checks and archives candidate builds.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild every commit that meets the refactoring threshold",
	Long: `Check out each candidate commit, patch its compiler level and build it.
Commits that build are rebuilt once more and their jars are archived in
commit-jars/ with a BLAKE2b digest.

Examples:
  # Rebuild commits with at least 30 refactorings
  entran build --threshold 30`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteBuild, "Build stage failed"),
}

// benchCmd benchmarks the archived jars.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark every archived jar with the JMH harness",
	Long: `Install each archived jar under the configured coordinates, rebuild the JMH
harness against it and run the benchmarks. Energy readings go to jmh-results/
and JMH results to perf-data/.`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteBench, "Benchmark stage failed"),
}

// metricsCmd extracts the energy and performance tables.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Extract energy and performance tables from benchmark output",
	Long: `Average the energy readings of every benchmark log, select the score of every
JMH result and join both on the short commit identifier.`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteMetrics, "Metrics extraction failed"),
}

// reportCmd writes the summaries, plot and dashboard.
var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Write the summary tables, the plot and the HTML dashboard",
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteReport, "Report failed"),
}

// runCmd runs the whole pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order and record the run",
	Long: `Run clone, refactorings, history, build, bench, metrics and report in order,
continuing past stages that fail. Each outcome goes into a run manifest in
the results directory, and the run is recorded in the results store when
one is configured.

Examples:
  # Full run from a params.yaml style config
  entran run --config params.yaml

  # Track runs in SQLite
  entran run --results-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteRun, "Run failed"),
}

// bundleCmd compresses the results directory.
var bundleCmd = &cobra.Command{
	Use:     "bundle",
	Short:   "Compress the results directory into results.tar.zst",
	PreRunE: sharedSetupWrapper,
	Run:     stageRun(core.ExecuteBundle, "Bundle failed"),
}
