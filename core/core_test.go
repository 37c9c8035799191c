package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/iocache"
	"github.com/huangsam/entran/internal/manifest"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testConfig returns a validated-looking config rooted in a temp dir, with
// an existing repository directory and results layout. Tables are printed
// as CSV to a file so tests stay quiet.
func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	layout := contract.NewLayout(filepath.Join(root, "results"))
	require.NoError(t, layout.Ensure())

	return &contract.Config{
		RepoURL: "https://github.com/x-stream/xstream.git",
		Branch:  "master",
		Coordinates: contract.Coordinates{
			GroupID:    "com.thoughtworks.xstream",
			ArtifactID: "xstream",
			Version:    "entran",
		},
		Threshold:      20,
		RepoDir:        repo,
		HarnessDir:     filepath.Join(root, "jmh"),
		RMinerPath:     "RefactoringMiner",
		ArtifactDir:    "target",
		BenchmarkJar:   "JMH-Benchmark-MWK.jar",
		JVMArgs:        []string{"-Xmx1g"},
		ResultLimit:    contract.DefaultResultLimit,
		Output:         schema.CSVOut,
		OutputFile:     filepath.Join(root, "out.csv"),
		ResultsBackend: schema.NoneBackend,
		Layout:         layout,
	}
}

// runArgs builds the argument list MockRunner records for one call.
func runArgs(dir, name string, args ...string) []any {
	out := []any{mock.Anything, dir, name}
	for _, a := range args {
		out = append(out, a)
	}
	return out
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func date(year int) time.Time {
	return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
}

// TestExecuteHistory tests that the history stage prints the commit table.
func TestExecuteHistory(t *testing.T) {
	cfg := testConfig(t)
	writeTestFile(t, cfg.Layout.RMinerReport(), rminerReport)

	git := &contract.MockGitClient{}
	git.On("GetHistoryLog", mock.Anything, cfg.RepoDir, "master").Return([]byte(historyLog), nil)
	deps := Deps{Git: git, Out: outwriter.NewOutWriter()}

	require.NoError(t, ExecuteHistory(context.Background(), cfg, deps))
	printed, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(printed), "Commit,Date,Files_modified,Insertions,Deletions,Refactorings_found\n"))
	assert.Contains(t, string(printed), "aaaaaaaa11111111,2019-03-04,2,13,2,2")
	git.AssertExpectations(t)
}

// TestExecuteHistory_Suppressed tests that a full run does not print stage tables.
func TestExecuteHistory_Suppressed(t *testing.T) {
	cfg := testConfig(t)
	writeTestFile(t, cfg.Layout.RMinerReport(), rminerReport)

	git := &contract.MockGitClient{}
	git.On("GetHistoryLog", mock.Anything, cfg.RepoDir, "master").Return([]byte(historyLog), nil)

	require.NoError(t, ExecuteHistory(withSuppressOutput(context.Background()), cfg, Deps{Git: git, Out: outwriter.NewOutWriter()}))
	assert.NoFileExists(t, cfg.OutputFile)
	assert.FileExists(t, cfg.Layout.CommitsInsights())
}

// TestExecuteRun_ContinuesPastFailure tests that a failing stage is recorded
// and the remaining stages still run and skip themselves for lack of input.
func TestExecuteRun_ContinuesPastFailure(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.RemoveAll(cfg.RepoDir))

	git := &contract.MockGitClient{}
	git.On("Clone", mock.Anything, cfg.RepoURL, cfg.RepoDir).Return(errors.New("network unreachable")).Once()
	runner := &contract.MockRunner{}

	store := &iocache.MockResultStore{}
	store.On("BeginRun", mock.Anything, cfg.RepoURL, "master", 20, mock.Anything).Return("run-1", nil)
	store.On("EndRun", "run-1", mock.Anything, 0).Return(nil)
	mgr := &iocache.MockResultManager{}
	mgr.On("GetResultStore").Return(store)

	err := ExecuteRun(context.Background(), cfg, Deps{Git: git, Runner: runner, Results: mgr, Out: outwriter.NewOutWriter()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage clone")
	assert.Contains(t, err.Error(), "network unreachable")
	assert.Contains(t, err.Error(), "stage report")
	assert.ErrorIs(t, err, contract.ErrMissingInput)

	m, err := manifest.Load(cfg.Layout.Manifest())
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.RunID)
	require.Len(t, m.Stages, len(schema.AllStages))
	for i, stage := range schema.AllStages {
		assert.Equal(t, stage, m.Stages[i].Stage)
	}
	var failed []schema.Stage
	for _, o := range m.Failed() {
		failed = append(failed, o.Stage)
	}
	assert.Equal(t, []schema.Stage{
		schema.StageClone, schema.StageRefactorings, schema.StageHistory, schema.StageBuild, schema.StageReport,
	}, failed, "bench and metrics find nothing to do")
	assert.Equal(t, manifest.Counts{}, m.Counts)
	assert.NoFileExists(t, cfg.Layout.Combined())

	git.AssertExpectations(t)
	runner.AssertNotCalled(t, "Run")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RecordCommitMetrics", mock.Anything, mock.Anything)
}

// TestExecuteRun_Canceled tests that cancellation ends the run before the
// next stage starts.
func TestExecuteRun_Canceled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExecuteRun(ctx, cfg, Deps{Out: outwriter.NewOutWriter()})
	assert.ErrorIs(t, err, context.Canceled)

	m, err := manifest.Load(cfg.Layout.Manifest())
	require.NoError(t, err)
	assert.Empty(t, m.Stages)
}

// TestExecuteRun_WithoutStore tests that a run id is generated when tracking is off.
func TestExecuteRun_WithoutStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.RepoURL = ""
	require.NoError(t, os.RemoveAll(cfg.RepoDir))

	err := ExecuteRun(context.Background(), cfg, Deps{Out: outwriter.NewOutWriter()})
	require.Error(t, err)

	m, err := manifest.Load(cfg.Layout.Manifest())
	require.NoError(t, err)
	assert.Len(t, m.RunID, 36)
	assert.Equal(t, schema.StageClone, m.Stages[0].Stage)
}

func writeRunTables(t *testing.T, cfg *contract.Config) {
	t.Helper()
	require.NoError(t, outwriter.WriteCommitsCSV(cfg.Layout.CommitsInsights(), []schema.CommitRecord{
		{Hash: "aaaaaaaa11111111", Date: date(2019), Refactorings: 30},
		{Hash: "bbbbbbbb22222222", Date: date(2020), Refactorings: 25},
		{Hash: "cccccccc33333333", Date: date(2021), Refactorings: 20},
		{Hash: "dddddddd44444444", Date: date(2022), Refactorings: 3},
	}))
	require.NoError(t, outwriter.WriteBuildStatusCSV(cfg.Layout.BuildStatus(), []schema.BuildRecord{
		{Commit: "aaaaaaaa11111111", Refactorings: 30, Status: schema.BuildSuccess},
		{Commit: "bbbbbbbb22222222", Refactorings: 25, Status: schema.BuildSuccess},
		{Commit: "cccccccc33333333", Refactorings: 20, Status: schema.BuildFailed, Cause: "boom"},
	}))
	require.NoError(t, outwriter.WriteArtifactsCSV(cfg.Layout.Artifacts(), []schema.ArtifactRecord{
		{Commit: "aaaaaaaa11111111", Name: "aaaaaaaa-x.jar", Path: "/x", Digest: "00"},
		{Commit: "bbbbbbbb22222222", Name: "bbbbbbbb-x.jar", Path: "/y", Digest: "11"},
	}))
	require.NoError(t, outwriter.WriteCombinedCSV(cfg.Layout.Combined(), []schema.CombinedRecord{
		{ShortID: "aaaaaaaa", Score: 2, Year: "2019", EnergyAvg: "7.50"},
		{ShortID: "bbbbbbbb", Score: 3.5, Year: "2020"},
	}))
}

func TestCollectCounts(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, manifest.Counts{}, collectCounts(cfg))

	writeRunTables(t, cfg)
	assert.Equal(t, manifest.Counts{
		Commits:     4,
		Candidates:  3,
		Buildable:   2,
		Artifacts:   2,
		Benchmarked: 2,
	}, collectCounts(cfg))
}

func TestCommitMetrics(t *testing.T) {
	cfg := testConfig(t)
	writeRunTables(t, cfg)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records, total, err := commitMetrics(cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, records, 3)

	a := records[0]
	assert.Equal(t, "aaaaaaaa", a.ShortID)
	assert.Equal(t, "2019", a.Year)
	assert.Equal(t, int32(30), a.Refactorings)
	assert.Equal(t, "Success", a.BuildStatus)
	require.NotNil(t, a.Score)
	assert.Equal(t, 2.0, *a.Score)
	require.NotNil(t, a.EnergyAvg)
	assert.Equal(t, 7.5, *a.EnergyAvg)
	assert.Equal(t, now, a.RecordedAt)

	b := records[1]
	require.NotNil(t, b.Score)
	assert.Nil(t, b.EnergyAvg, "empty energy average stays nil")

	c := records[2]
	assert.Equal(t, "Failed", c.BuildStatus)
	assert.Nil(t, c.Score)
}

func TestRecordRun(t *testing.T) {
	cfg := testConfig(t)
	writeRunTables(t, cfg)
	finished := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	store := &iocache.MockResultStore{}
	store.On("RecordCommitMetrics", "run-1", mock.AnythingOfType("schema.CommitMetricRecord")).Return(nil).Times(2)
	store.On("RecordCommitMetrics", "run-1", mock.AnythingOfType("schema.CommitMetricRecord")).Return(errors.New("db down")).Once()
	store.On("EndRun", "run-1", finished, 4).Return(nil)

	recordRun(store, "run-1", cfg, finished)
	store.AssertExpectations(t)

	assert.NotPanics(t, func() { recordRun(nil, "run-1", cfg, finished) })
}

func TestExecuteBundle(t *testing.T) {
	cfg := testConfig(t)
	writeRunTables(t, cfg)

	require.NoError(t, ExecuteBundle(context.Background(), cfg, Deps{}))
	assert.FileExists(t, cfg.Layout.Bundle())
}
