package core

import (
	"context"
	"os"
	"testing"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/outwriter"
	"github.com/huangsam/entran/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const perfResult = `[
  {"benchmark": "a", "primaryMetric": {"score": 1.25, "scoreUnit": "s/op"}},
  {"benchmark": "b", "primaryMetric": {"score": 2.5, "scoreUnit": "s/op"}}
]`

// writeBenchOutputs leaves what the bench stage writes for three commits.
// cccccccc has a single score and bbbbbbbb a log without readings.
func writeBenchOutputs(t *testing.T, l contract.Layout) {
	t.Helper()
	writeTestFile(t, l.JMHLogFile("aaaaaaaa"), "# Warmup\n5+ 10+\n")
	writeTestFile(t, l.JMHLogFile("bbbbbbbb"), "no readings\n")
	writeTestFile(t, l.PerfResultFile("aaaaaaaa"), perfResult)
	writeTestFile(t, l.PerfResultFile("bbbbbbbb"), perfResult)
	writeTestFile(t, l.PerfResultFile("cccccccc"), `[{"primaryMetric": {"score": 1}}]`)
}

// writeCommitTable leaves the history stage output for aaaaaaaa and bbbbbbbb.
func writeCommitTable(t *testing.T, l contract.Layout) {
	t.Helper()
	require.NoError(t, outwriter.WriteCommitsCSV(l.CommitsInsights(), []schema.CommitRecord{
		{Hash: "aaaaaaaa11111111", Date: date(2019), Refactorings: 30},
		{Hash: "bbbbbbbb22222222", Date: date(2020), Refactorings: 25},
	}))
}

func TestRunMetrics(t *testing.T) {
	cfg := testConfig(t)
	writeCommitTable(t, cfg.Layout)
	writeBenchOutputs(t, cfg.Layout)

	output, err := runMetrics(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []schema.EnergyRecord{
		{ShortID: "aaaaaaaa", Average: 7.5, Count: 2, Year: "2019"},
	}, output.Energy)
	assert.Equal(t, []schema.PerfRecord{
		{ShortID: "aaaaaaaa", Score: 2.5, Year: "2019"},
		{ShortID: "bbbbbbbb", Score: 2.5, Year: "2020"},
	}, output.Perf)
	assert.Equal(t, []schema.CombinedRecord{
		{ShortID: "aaaaaaaa", Score: 2.5, Year: "2019", EnergyAvg: "7.50"},
		{ShortID: "bbbbbbbb", Score: 2.5, Year: "2020"},
	}, output.Combined)

	combined, err := outwriter.ReadCombinedCSV(cfg.Layout.Combined())
	require.NoError(t, err)
	assert.Equal(t, output.Combined, combined)
}

// TestRunMetrics_Idempotent tests that extracting twice yields identical tables.
func TestRunMetrics_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	writeCommitTable(t, cfg.Layout)
	writeBenchOutputs(t, cfg.Layout)

	paths := []string{cfg.Layout.EnergyData(), cfg.Layout.PerfData(), cfg.Layout.Combined()}
	_, err := runMetrics(context.Background(), cfg)
	require.NoError(t, err)
	first := make([][]byte, len(paths))
	for i, p := range paths {
		first[i], err = os.ReadFile(p)
		require.NoError(t, err)
	}

	_, err = runMetrics(context.Background(), cfg)
	require.NoError(t, err)
	for i, p := range paths {
		again, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, first[i], again, p)
	}
}

func TestRunMetrics_MissingDirectories(t *testing.T) {
	cfg := testConfig(t)
	writeCommitTable(t, cfg.Layout)
	require.NoError(t, os.RemoveAll(cfg.Layout.JMHResultsDir()))
	require.NoError(t, os.RemoveAll(cfg.Layout.PerfDataDir()))

	output, err := runMetrics(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, output.Energy)
	assert.Nil(t, output.Perf)
	assert.Nil(t, output.Combined)

	assert.NoFileExists(t, cfg.Layout.EnergyData())
	assert.NoFileExists(t, cfg.Layout.PerfData())
	assert.NoFileExists(t, cfg.Layout.Combined())
}

func TestRunMetrics_MissingEnergyLogs(t *testing.T) {
	cfg := testConfig(t)
	writeCommitTable(t, cfg.Layout)
	writeBenchOutputs(t, cfg.Layout)
	require.NoError(t, os.RemoveAll(cfg.Layout.JMHResultsDir()))

	output, err := runMetrics(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, output.Perf, 2)
	assert.FileExists(t, cfg.Layout.PerfData())
	assert.NoFileExists(t, cfg.Layout.EnergyData())
	assert.NoFileExists(t, cfg.Layout.Combined())
}

func TestRunMetrics_MissingCommitTable(t *testing.T) {
	cfg := testConfig(t)
	writeBenchOutputs(t, cfg.Layout)

	output, err := runMetrics(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoFileExists(t, cfg.Layout.EnergyData())
	assert.NoFileExists(t, cfg.Layout.Combined())
	assert.Equal(t, []schema.PerfRecord{
		{ShortID: "aaaaaaaa", Score: 2.5, Year: schema.UnknownYear},
		{ShortID: "bbbbbbbb", Score: 2.5, Year: schema.UnknownYear},
	}, output.Perf)
	assert.FileExists(t, cfg.Layout.PerfData())
}

func TestRunMetrics_EmptyDirectories(t *testing.T) {
	cfg := testConfig(t)
	writeCommitTable(t, cfg.Layout)
	require.NoError(t, os.MkdirAll(cfg.Layout.JMHResultsDir(), 0o755))
	require.NoError(t, os.MkdirAll(cfg.Layout.PerfDataDir(), 0o755))

	output, err := runMetrics(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, output.Combined)

	header, rows, err := outwriter.ReadCSVFile(cfg.Layout.Combined())
	require.NoError(t, err)
	assert.Equal(t, outwriter.CombinedHeader, header)
	assert.Empty(t, rows)
}

func TestRunMetrics_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runMetrics(ctx, testConfig(t))
	assert.ErrorIs(t, err, context.Canceled)
}
