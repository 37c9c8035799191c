package contract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/huangsam/entran/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input equivalent to the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Repo: RepoRawInput{
			RepoURL:    "https://github.com/x-stream/xstream.git",
			Branch:     "master",
			GroupID:    "com.thoughtworks.xstream",
			ArtifactID: "xstream",
			Version:    "entran",
		},
		Plot:         PlotRawInput{Title: "XStream"},
		Threshold:    DefaultThreshold,
		ResultsDir:   DefaultResultsDir,
		RepoDir:      DefaultRepoDir,
		HarnessDir:   DefaultHarnessDir,
		RMinerPath:   DefaultRMinerPath,
		BenchmarkJar: DefaultBenchmarkJar,
		Limit:        DefaultResultLimit,
		Output:       "text",
		Color:        "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid defaults", mutate: func(*ConfigRawInput) {}},
		{name: "negative threshold", mutate: func(in *ConfigRawInput) { in.Threshold = -1 }, expectError: "threshold"},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: "limit"},
		{name: "limit too large", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: "limit"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: "--output-file"},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "--color"},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.ResultsBackend = "oracle" }, expectError: "invalid results backend"},
		{name: "mysql without connection", mutate: func(in *ConfigRawInput) { in.ResultsBackend = "mysql" }, expectError: "results-db-connect"},
		{name: "empty branch", mutate: func(in *ConfigRawInput) { in.Repo.Branch = "" }, expectError: "Branch"},
		{name: "empty repo dir", mutate: func(in *ConfigRawInput) { in.RepoDir = " " }, expectError: "repo-dir"},
		{name: "absolute artifact dir", mutate: func(in *ConfigRawInput) { in.ArtifactDir = "/tmp/target" }, expectError: "artifact-dir"},
		{name: "empty benchmark jar", mutate: func(in *ConfigRawInput) { in.BenchmarkJar = "" }, expectError: "BenchmarkJar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(context.Background(), cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Resolved(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, validInput()))

	assert.True(t, filepath.IsAbs(cfg.RepoDir))
	assert.True(t, filepath.IsAbs(cfg.HarnessDir))
	assert.True(t, filepath.IsAbs(cfg.Layout.Root))
	assert.Equal(t, filepath.Join("xstream", "target"), cfg.ArtifactDir)
	assert.Equal(t, DefaultJVMArgs, cfg.JVMArgs)
	assert.Equal(t, schema.NoneBackend, cfg.ResultsBackend)
	assert.Equal(t, 20, cfg.Threshold)
	assert.True(t, cfg.UseColors)
	assert.NoError(t, cfg.ValidateCoordinates())
	assert.NoError(t, cfg.ValidateRepoURL())
}

func TestConfigValidateCoordinates(t *testing.T) {
	cfg := &Config{Coordinates: Coordinates{GroupID: "g", ArtifactID: "a"}}
	assert.Error(t, cfg.ValidateCoordinates())
	cfg.Coordinates.Version = "v"
	assert.NoError(t, cfg.ValidateCoordinates())
}

func TestConfigValidateRepoURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://github.com/x-stream/xstream.git", true},
		{"git@github.com:x-stream/xstream.git", true},
		{"/srv/git/xstream", true},
		{"", false},
		{"ht tp://example.com/repo.git", false},
	}
	for _, tt := range tests {
		cfg := &Config{RepoURL: tt.url}
		if tt.ok {
			assert.NoError(t, cfg.ValidateRepoURL(), tt.url)
		} else {
			assert.Error(t, cfg.ValidateRepoURL(), tt.url)
		}
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{JVMArgs: []string{"-Xmx1g"}}
	clone := cfg.Clone()
	clone.JVMArgs[0] = "-Xmx2g"
	assert.Equal(t, "-Xmx1g", cfg.JVMArgs[0])
}

func TestDefaultArtifactDir(t *testing.T) {
	assert.Equal(t, "target", DefaultArtifactDir("", ""))
	assert.Equal(t, filepath.Join("gson", "target"), DefaultArtifactDir("", "Gson"))
	assert.Equal(t, filepath.Join("core", "target"), DefaultArtifactDir("core/target/", "Gson"))
}

func TestParseJVMArgs(t *testing.T) {
	assert.Equal(t, DefaultJVMArgs, ParseJVMArgs(""))
	assert.Equal(t, []string{"-Xmx2g", "--add-opens", "java.base/java.util=ALL-UNNAMED"},
		ParseJVMArgs("-Xmx2g, --add-opens java.base/java.util=ALL-UNNAMED"))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/entran", false},
		{"mysql no tcp", schema.MySQLBackend, "root:pw@localhost/entran", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=entran", false},
		{"postgres no dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
