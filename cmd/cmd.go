// Package cmd defines the command-line interface for entran.
package cmd

import (
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// nestedFlags maps flags onto the sections of the params.yaml layout.
var nestedFlags = map[string]string{
	"repo-url":         "repo.repo_url",
	"branch":           "repo.branch",
	"group-id":         "repo.groupid",
	"artifact-id":      "repo.artifactid",
	"artifact-version": "repo.version",
	"plot-title":       "plot.plot_title",
}

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add the pipeline stages to the root command
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(refactoringsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bundleCmd)

	// Add the supporting commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the results subcommands to the parent results command
	resultsCmd.AddCommand(resultsClearCmd)
	resultsCmd.AddCommand(resultsStatusCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("repo-url", "", "Clone URL of the Java library")
	flags.String("branch", contract.DefaultBranch, "Branch whose history is analyzed")
	flags.String("group-id", "", "Maven groupId the rebuilt jars are installed under")
	flags.String("artifact-id", "", "Maven artifactId the rebuilt jars are installed under")
	flags.String("artifact-version", "", "Maven version the rebuilt jars are installed under")
	flags.String("plot-title", contract.DefaultPlotTitle, "Title of the plot and name of the built module")
	flags.IntP("threshold", "t", contract.DefaultThreshold, "Minimum refactorings for a commit to be rebuilt")
	flags.String("results-dir", contract.DefaultResultsDir, "Directory every stage reads from and writes to")
	flags.String("repo-dir", contract.DefaultRepoDir, "Directory the repository is cloned into")
	flags.String("harness-dir", contract.DefaultHarnessDir, "Directory of the JMH benchmark harness project")
	flags.String("rminer-path", contract.DefaultRMinerPath, "RefactoringMiner executable")
	flags.String("artifact-dir", "", "Directory of built jars relative to repo-dir (default <plot-title>/target)")
	flags.String("benchmark-jar", contract.DefaultBenchmarkJar, "Jar the harness build produces under target/")
	flags.String("jvm-args", "", "Comma-separated JVM arguments for benchmark runs")
	flags.IntP("limit", "l", contract.DefaultResultLimit, "Number of rows to display in text tables")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("results-backend", string(schema.NoneBackend), "Results store backend: sqlite or mysql or postgresql or none")
	flags.String("results-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Repository and plot flags also fill their params.yaml sections
	for flag, key := range nestedFlags {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			contract.LogFatal("Error binding repository flags", err)
		}
	}

	// Bind all flags of cloneCmd to Viper
	cloneCmd.Flags().Bool("install-baseline", false, "Install the cloned head under the configured coordinates")
	if err := viper.BindPFlags(cloneCmd.Flags()); err != nil {
		contract.LogFatal("Error binding clone flags", err)
	}

	// Bind all flags of resultsMigrateCmd to Viper
	resultsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(resultsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding results migrate flags", err)
	}
}
