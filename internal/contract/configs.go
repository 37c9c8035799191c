package contract

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/entran/schema"
)

// Default values for configuration.
const (
	DefaultThreshold    = 20
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultBranch       = "master"
	DefaultResultsDir   = "results"
	DefaultRepoDir      = "repo"
	DefaultHarnessDir   = "jmh"
	DefaultRMinerPath   = "RefactoringMiner"
	DefaultBenchmarkJar = "JMH-Benchmark-MWK.jar"
	DefaultPlotTitle    = ""
)

// DefaultJVMArgs opens the JDK packages that serialization libraries reflect into.
var DefaultJVMArgs = []string{
	"--add-opens", "java.base/java.util=ALL-UNNAMED",
	"--add-opens", "java.base/java.lang.reflect=ALL-UNNAMED",
	"--add-opens", "java.base/java.text=ALL-UNNAMED",
	"--add-opens", "java.desktop/java.awt.font=ALL-UNNAMED",
}

// validate is shared because validator caches struct metadata.
var validate = validator.New()

// Coordinates are the Maven coordinates each archived jar is installed under.
type Coordinates struct {
	GroupID    string `validate:"required"`
	ArtifactID string `validate:"required"`
	Version    string `validate:"required"`
}

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	RepoURL     string
	Branch      string `validate:"required"`
	Coordinates Coordinates `validate:"-"` // checked per stage by ValidateCoordinates
	PlotTitle   string

	Threshold int `validate:"gte=0"`

	RepoDir      string `validate:"required"`
	HarnessDir   string `validate:"required"`
	RMinerPath   string `validate:"required"`
	ArtifactDir  string `validate:"required"`
	BenchmarkJar string `validate:"required"`
	JVMArgs      []string

	InstallBaseline bool

	ResultLimit int `validate:"gt=0,lte=1000"`
	Output      schema.OutputMode
	OutputFile  string
	Width       int `validate:"gte=0"` // Terminal width override (0 = auto-detect)
	UseColors   bool

	ResultsBackend   schema.DatabaseBackend
	ResultsDBConnect string // Please use env var as this is plaintext

	Layout Layout
}

// RepoRawInput mirrors the "repo" section of the config file.
type RepoRawInput struct {
	RepoURL    string `mapstructure:"repo_url"`
	Branch     string `mapstructure:"branch"`
	GroupID    string `mapstructure:"groupid"`
	ArtifactID string `mapstructure:"artifactid"`
	Version    string `mapstructure:"version"`
}

// PlotRawInput mirrors the "plot" section of the config file.
type PlotRawInput struct {
	Title string `mapstructure:"plot_title"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Sections shared with params.yaml ---
	Repo RepoRawInput `mapstructure:"repo"`
	Plot PlotRawInput `mapstructure:"plot"`

	// --- Fields from rootCmd.PersistentFlags() ---
	Threshold        int    `mapstructure:"threshold"`
	ResultsDir       string `mapstructure:"results-dir"`
	RepoDir          string `mapstructure:"repo-dir"`
	HarnessDir       string `mapstructure:"harness-dir"`
	RMinerPath       string `mapstructure:"rminer-path"`
	ArtifactDir      string `mapstructure:"artifact-dir"`
	BenchmarkJar     string `mapstructure:"benchmark-jar"`
	JVMArgs          string `mapstructure:"jvm-args"`
	Limit            int    `mapstructure:"limit"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	ResultsBackend   string `mapstructure:"results-backend"`
	ResultsDBConnect string `mapstructure:"results-db-connect"`

	// --- Fields from cloneCmd.Flags() ---
	InstallBaseline bool `mapstructure:"install-baseline"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.JVMArgs = slices.Clone(c.JVMArgs)
	return &clone
}

// ValidateCoordinates checks the Maven coordinates needed to publish jars.
func (c *Config) ValidateCoordinates() error {
	if err := validate.Struct(c.Coordinates); err != nil {
		return fmt.Errorf("repo.groupId, repo.artifactId and repo.version must be set: %w", err)
	}
	return nil
}

// ValidateRepoURL checks the clone URL.
func (c *Config) ValidateRepoURL() error {
	if err := validate.Var(c.RepoURL, "required"); err != nil {
		return fmt.Errorf("repo.repo_url must be set")
	}
	if strings.Contains(c.RepoURL, "://") {
		if err := validate.Var(c.RepoURL, "url"); err != nil {
			return fmt.Errorf("invalid repo url %q: %w", c.RepoURL, err)
		}
	}
	return nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(_ context.Context, cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolvePaths(cfg, input); err != nil {
		return err
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("results-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("results-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the results backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.ResultsBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.ResultsBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.ResultsBackend]; !ok {
		return fmt.Errorf("invalid results backend '%s'. must be sqlite, mysql, postgresql, none", input.ResultsBackend)
	}
	cfg.ResultsDBConnect = input.ResultsDBConnect
	return ValidateDatabaseConnectionString(cfg.ResultsBackend, cfg.ResultsDBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple fields from input -> cfg ---
	cfg.RepoURL = strings.TrimSpace(input.Repo.RepoURL)
	cfg.Branch = strings.TrimSpace(input.Repo.Branch)
	cfg.Coordinates = Coordinates{
		GroupID:    strings.TrimSpace(input.Repo.GroupID),
		ArtifactID: strings.TrimSpace(input.Repo.ArtifactID),
		Version:    strings.TrimSpace(input.Repo.Version),
	}
	cfg.PlotTitle = input.Plot.Title
	cfg.BenchmarkJar = input.BenchmarkJar
	cfg.RMinerPath = input.RMinerPath
	cfg.InstallBaseline = input.InstallBaseline
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Threshold Validation ---
	if input.Threshold < 0 {
		return fmt.Errorf("threshold cannot be negative (received %d)", input.Threshold)
	}
	cfg.Threshold = input.Threshold

	// --- 2. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. JVM Arguments ---
	cfg.JVMArgs = ParseJVMArgs(input.JVMArgs)

	return nil
}

// resolvePaths makes every working directory absolute, since external tools
// run with their own working directory.
func resolvePaths(cfg *Config, input *ConfigRawInput) error {
	abs := func(name, p string) (string, error) {
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("%s cannot be empty", name)
		}
		a, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s %q: %w", name, p, err)
		}
		return a, nil
	}

	var err error
	if cfg.RepoDir, err = abs("repo-dir", input.RepoDir); err != nil {
		return err
	}
	if cfg.HarnessDir, err = abs("harness-dir", input.HarnessDir); err != nil {
		return err
	}
	resultsDir, err := abs("results-dir", input.ResultsDir)
	if err != nil {
		return err
	}
	cfg.Layout = NewLayout(resultsDir)

	cfg.ArtifactDir = DefaultArtifactDir(input.ArtifactDir, cfg.PlotTitle)
	if filepath.IsAbs(cfg.ArtifactDir) {
		return fmt.Errorf("artifact-dir must be relative to repo-dir (received %q)", cfg.ArtifactDir)
	}
	return nil
}

// DefaultArtifactDir returns dir, or the module directory named after the plot
// title when dir is empty.
func DefaultArtifactDir(dir, plotTitle string) string {
	if d := strings.TrimSpace(dir); d != "" {
		return filepath.Clean(d)
	}
	if t := strings.TrimSpace(plotTitle); t != "" {
		return filepath.Join(strings.ToLower(t), "target")
	}
	return "target"
}

// ParseJVMArgs splits a comma or whitespace separated argument list.
// An empty string yields DefaultJVMArgs.
func ParseJVMArgs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return slices.Clone(DefaultJVMArgs)
	}
	return fields
}
