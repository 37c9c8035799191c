package outwriter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/internal/parquet"
	"github.com/huangsam/entran/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errParquetUnsupported is returned for tables that have no Parquet layout.
var errParquetUnsupported = errors.New("parquet output is only available for metrics")

// view is a stage result prepared for every output format.
type view struct {
	header    []string
	rows      [][]string // plain cells, used for csv
	table     [][]string // display cells, used for text
	json      any
	noun      string
	summary   string
	toParquet func(path string) error
}

// PrintCommits outputs the commit table.
func PrintCommits(commits []schema.CommitRecord, cfg *contract.Config, duration time.Duration) error {
	rows := commitRows(commits)
	table := make([][]string, len(rows))
	for i, row := range rows {
		display := append([]string{}, row...)
		display[0] = schema.ShortID(row[0])
		table[i] = display
	}
	var withRefactorings int
	for _, c := range commits {
		if c.Refactorings > 0 {
			withRefactorings++
		}
	}
	return printView(view{
		header:  CommitsHeader,
		rows:    rows,
		table:   table,
		json:    commits,
		noun:    "commits",
		summary: fmt.Sprintf("%d commits with refactorings", withRefactorings),
	}, cfg, duration)
}

// PrintTypeCounts outputs the refactoring type frequency table.
func PrintTypeCounts(counts []schema.TypeCount, cfg *contract.Config, duration time.Duration) error {
	rows := make([][]string, 0, len(counts))
	total := 0
	for _, c := range counts {
		rows = append(rows, []string{c.Type, strconv.Itoa(c.Occurrences)})
		total += c.Occurrences
	}
	return printView(view{
		header:  TypeCountsHeader,
		rows:    rows,
		table:   rows,
		json:    counts,
		noun:    "refactoring types",
		summary: fmt.Sprintf("%d refactorings in total", total),
	}, cfg, duration)
}

// PrintBuilds outputs the build status table with colored status labels.
func PrintBuilds(builds []schema.BuildRecord, cfg *contract.Config, duration time.Duration) error {
	rows := buildRows(builds)
	width := GetMaxTableTextWidth(cfg, 45)
	table := make([][]string, len(builds))
	var ok int
	for i, b := range builds {
		status := contract.GetPlainStatus(b.Status)
		if cfg.UseColors {
			status = contract.GetColorStatus(b.Status)
		}
		table[i] = []string{
			schema.ShortID(b.Commit),
			strconv.Itoa(b.Refactorings),
			status,
			contract.TruncateText(b.Cause, width),
		}
		if b.Status == schema.BuildSuccess {
			ok++
		}
	}
	return printView(view{
		header:  BuildStatusHeader,
		rows:    rows,
		table:   table,
		json:    builds,
		noun:    "build attempts",
		summary: fmt.Sprintf("%d succeeded, %d failed or skipped", ok, len(builds)-ok),
	}, cfg, duration)
}

// PrintCombined outputs the joined energy and performance table.
func PrintCombined(records []schema.CombinedRecord, cfg *contract.Config, duration time.Duration) error {
	rows := combinedRows(records)
	var withEnergy int
	for _, r := range records {
		if r.EnergyAvg != "" {
			withEnergy++
		}
	}
	return printView(view{
		header:  CombinedHeader,
		rows:    rows,
		table:   rows,
		json:    records,
		noun:    "benchmarked commits",
		summary: fmt.Sprintf("%d with energy data", withEnergy),
		toParquet: func(path string) error {
			return parquet.WriteCombinedParquet(parquet.ConvertCombinedRecords(records), path)
		},
	}, cfg, duration)
}

// printView dispatches on the configured output format.
func printView(v view, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, v.json)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRows(w, v.header, v.rows)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if v.toParquet == nil {
			return errParquetUnsupported
		}
		if err := v.toParquet(cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.LogInfo("💾 Wrote Parquet to %s", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTable(v, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeTable renders at most cfg.ResultLimit rows with a leading row number.
func writeTable(v view, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header(append([]string{"No."}, v.header...))
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	shown := min(len(v.table), cfg.ResultLimit)
	data := make([][]string, 0, shown)
	for i := range shown {
		data = append(data, append([]string{strconv.Itoa(i + 1)}, v.table[i]...))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d of %d %s (%s)\n", shown, len(v.table), v.noun, v.summary); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Completed in %v. Results backend: %s\n", duration.Round(time.Millisecond), cfg.ResultsBackend); err != nil {
		return err
	}
	return nil
}
