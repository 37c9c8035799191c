package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/iocache"
	"github.com/huangsam/entran/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resultsBackend reads and validates the results backend settings.
func resultsBackend() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("results-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid results backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("results-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// resultsSetup loads minimal configuration needed for results operations.
// This is used by commands that need store access without full shared setup.
func resultsSetup() error {
	backend, connStr, err := resultsBackend()
	if err != nil {
		return err
	}
	if err := iocache.InitResults(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize results store: %w", err)
	}

	cfg.ResultsBackend = backend
	cfg.ResultsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// resultsSetupWrapper wraps resultsSetup to provide PreRunE for results commands.
func resultsSetupWrapper(_ *cobra.Command, _ []string) error {
	return resultsSetup()
}

// resultsMigrateSetup resolves the backend without opening the store, so
// migrations can run against a fresh or outdated database.
func resultsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resultsBackend()
	if err != nil {
		return err
	}
	cfg.ResultsBackend = backend
	cfg.ResultsDBConnect = connStr
	return nil
}

// resultsCmd focused on results store management.
//
// Note: results subcommands skip sharedSetup, so they work without a
// repository or pipeline settings.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage recorded pipeline runs and exports",
	Long: `Manage the runs recorded by 'entran run'.

Each run stores its configuration, duration and, per candidate commit, the
build status, benchmark score and energy average.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show results store statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check the SQLite store
  entran results status --results-backend sqlite

  # Export for analysis in pandas/DuckDB
  entran results export --results-backend sqlite --output-file entran-data`,
}

// resultsClearCmd clears the results store.
var resultsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs and commit metrics",
	Long: `Delete all recorded runs and per-commit metrics.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the results tables

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: resultsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := cfg.ResultsDBConnect
		if dbPath == "" {
			dbPath = iocache.GetResultsDBFilePath()
		}
		if err := iocache.ClearResults(cfg.ResultsBackend, dbPath, cfg.ResultsDBConnect); err != nil {
			contract.LogFatal("Failed to clear results", err)
		}
		fmt.Println("Results cleared successfully.")
	},
}

// resultsStatusCmd shows results store status.
var resultsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display results store statistics and connection details",
	Long: `Show the backend, the number of recorded runs, the latest and oldest run and
the size of each results table.`,
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetResultStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get results status", err)
		}
		iocache.PrintResultsStatus(os.Stdout, status)
	},
}

// resultsExportCmd exports results to Parquet files.
var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded runs and commit metrics to Parquet.

Writes <output-file>.runs.parquet and <output-file>.commit_metrics.parquet.

Requires: --output-file parameter

Examples:
  entran results export --results-backend sqlite --output-file xstream
  duckdb -c "SELECT * FROM read_parquet('xstream.commit_metrics.parquet') LIMIT 10"`,
	PreRunE: resultsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteResultsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export results", err)
		}
	},
}

// resultsMigrateCmd runs database migrations for the results store.
var resultsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the results store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  entran results migrate --results-backend sqlite

  # Rollback to initial state
  entran results migrate --results-backend sqlite --target-version 0`,
	PreRunE: resultsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateResults(os.Stdout, cfg.ResultsBackend, cfg.ResultsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
