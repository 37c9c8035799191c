package outwriter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/entran/schema"
)

// DateLayout is how commit dates are stored in the commit table.
const DateLayout = "2006-01-02"

// Column headers of the results tables.
var (
	CommitsHeader     = []string{"Commit", "Date", "Files_modified", "Insertions", "Deletions", "Refactorings_found"}
	TypeCountsHeader  = []string{"Refactorings_found", "Occurrences"}
	BuildStatusHeader = []string{"Commit", "Refactorings_found", "Status", "Error_cause"}
	ArtifactsHeader   = []string{"Commit", "Jar", "Path", "Blake2b"}
	EnergyHeader      = []string{"HASH", "AVERAGE", "TOTAL_NUMBERS", "YEAR"}
	PerfHeader        = []string{"Commit_Hash", "Score", "Year"}
	CombinedHeader    = []string{"Commit_Hash", "Score", "Year", "Energy_Avg_(uj)"}
)

// --- Commit table ---

func commitRows(commits []schema.CommitRecord) [][]string {
	rows := make([][]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, []string{
			c.Hash,
			c.Date.Format(DateLayout),
			strconv.Itoa(c.FilesModified),
			strconv.Itoa(c.Insertions),
			strconv.Itoa(c.Deletions),
			strconv.Itoa(c.Refactorings),
		})
	}
	return rows
}

// WriteCommitsCSV writes the commit table.
func WriteCommitsCSV(path string, commits []schema.CommitRecord) error {
	return WriteCSVFile(path, CommitsHeader, commitRows(commits))
}

// ReadCommitsCSV reads the commit table back.
func ReadCommitsCSV(path string) ([]schema.CommitRecord, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	commits := make([]schema.CommitRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(CommitsHeader) {
			return nil, rowError(path, i, "expected %d columns", len(CommitsHeader))
		}
		date, err := time.Parse(DateLayout, row[1])
		if err != nil && row[1] != "" {
			return nil, rowError(path, i, "bad date %q", row[1])
		}
		ints, err := atois(row[2:6])
		if err != nil {
			return nil, rowError(path, i, "%v", err)
		}
		commits = append(commits, schema.CommitRecord{
			Hash:          row[0],
			Date:          date,
			FilesModified: ints[0],
			Insertions:    ints[1],
			Deletions:     ints[2],
			Refactorings:  ints[3],
		})
	}
	return commits, nil
}

// ReadCommitDates reads the (hash, date) columns of the commit table as text.
func ReadCommitDates(path string) ([][2]string, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	out := make([][2]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out = append(out, [2]string{row[0], row[1]})
	}
	return out, nil
}

// WriteSuccessfulCommitsCSV writes the commit rows of the successful summary.
// The columns are the commit table's; build status is implied.
func WriteSuccessfulCommitsCSV(path string, commits []schema.CommitRecord) error {
	return WriteCommitsCSV(path, commits)
}

// --- Refactoring types ---

// WriteTypeCountsCSV writes the type frequency table.
func WriteTypeCountsCSV(path string, counts []schema.TypeCount) error {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Type, strconv.Itoa(c.Occurrences)})
	}
	return WriteCSVFile(path, TypeCountsHeader, rows)
}

// --- Build status ---

func buildRows(builds []schema.BuildRecord) [][]string {
	rows := make([][]string, 0, len(builds))
	for _, b := range builds {
		rows = append(rows, []string{b.Commit, strconv.Itoa(b.Refactorings), string(b.Status), b.Cause})
	}
	return rows
}

// WriteBuildStatusCSV writes the outcome of the buildability pass.
func WriteBuildStatusCSV(path string, builds []schema.BuildRecord) error {
	return WriteCSVFile(path, BuildStatusHeader, buildRows(builds))
}

// ReadBuildStatusCSV reads the build status table.
func ReadBuildStatusCSV(path string) ([]schema.BuildRecord, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	builds := make([]schema.BuildRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(BuildStatusHeader) {
			return nil, rowError(path, i, "expected %d columns", len(BuildStatusHeader))
		}
		count, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, rowError(path, i, "bad count %q", row[1])
		}
		builds = append(builds, schema.BuildRecord{
			Commit:       row[0],
			Refactorings: count,
			Status:       schema.BuildStatus(row[2]),
			Cause:        row[3],
		})
	}
	return builds, nil
}

// --- Artifacts ---

// WriteArtifactsCSV writes the archived jar index.
func WriteArtifactsCSV(path string, artifacts []schema.ArtifactRecord) error {
	rows := make([][]string, 0, len(artifacts))
	for _, a := range artifacts {
		rows = append(rows, []string{a.Commit, a.Name, a.Path, a.Digest})
	}
	return WriteCSVFile(path, ArtifactsHeader, rows)
}

// ReadArtifactsCSV reads the archived jar index.
func ReadArtifactsCSV(path string) ([]schema.ArtifactRecord, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]schema.ArtifactRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(ArtifactsHeader) {
			return nil, rowError(path, i, "expected %d columns", len(ArtifactsHeader))
		}
		out = append(out, schema.ArtifactRecord{Commit: row[0], Name: row[1], Path: row[2], Digest: row[3]})
	}
	return out, nil
}

// --- Metrics ---

// WriteEnergyCSV writes the per-commit energy averages.
func WriteEnergyCSV(path string, records []schema.EnergyRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ShortID, schema.FormatAverage(r.Average), strconv.Itoa(r.Count), r.Year})
	}
	return WriteCSVFile(path, EnergyHeader, rows)
}

// ReadEnergyCSV reads the per-commit energy averages.
func ReadEnergyCSV(path string) ([]schema.EnergyRecord, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]schema.EnergyRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(EnergyHeader) {
			return nil, rowError(path, i, "expected %d columns", len(EnergyHeader))
		}
		avg, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, rowError(path, i, "bad average %q", row[1])
		}
		count, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, rowError(path, i, "bad count %q", row[2])
		}
		out = append(out, schema.EnergyRecord{ShortID: strings.TrimSpace(row[0]), Average: avg, Count: count, Year: row[3]})
	}
	return out, nil
}

// WritePerfCSV writes the per-commit performance scores.
func WritePerfCSV(path string, records []schema.PerfRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ShortID, schema.ScoreCell(r.Score, r.RawScore), r.Year})
	}
	return WriteCSVFile(path, PerfHeader, rows)
}

// ReadPerfCSV reads the per-commit performance scores.
func ReadPerfCSV(path string) ([]schema.PerfRecord, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]schema.PerfRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(PerfHeader) {
			return nil, rowError(path, i, "expected %d columns", len(PerfHeader))
		}
		score, raw := schema.ParseScoreCell(row[1])
		out = append(out, schema.PerfRecord{ShortID: row[0], Score: score, RawScore: raw, Year: row[2]})
	}
	return out, nil
}

func combinedRows(records []schema.CombinedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.ShortID, schema.ScoreCell(r.Score, r.RawScore), r.Year, r.EnergyAvg})
	}
	return rows
}

// WriteCombinedCSV writes the joined energy and performance table.
func WriteCombinedCSV(path string, records []schema.CombinedRecord) error {
	return WriteCSVFile(path, CombinedHeader, combinedRows(records))
}

// ReadCombinedCSV reads the joined energy and performance table.
func ReadCombinedCSV(path string) ([]schema.CombinedRecord, error) {
	_, rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]schema.CombinedRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(CombinedHeader) {
			return nil, rowError(path, i, "expected %d columns", len(CombinedHeader))
		}
		score, raw := schema.ParseScoreCell(row[1])
		out = append(out, schema.CombinedRecord{ShortID: row[0], Score: score, RawScore: raw, Year: row[2], EnergyAvg: row[3]})
	}
	return out, nil
}

// --- Mapping ---

// WriteMappingCSV writes the wide commit to refactoring types table. The first
// row of table is the header.
func WriteMappingCSV(path string, table [][]string) error {
	if len(table) == 0 {
		return WriteCSVFile(path, []string{}, nil)
	}
	return WriteCSVFile(path, table[0], table[1:])
}

func atois(values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", v)
		}
		out[i] = n
	}
	return out, nil
}

func rowError(path string, row int, format string, args ...any) error {
	return fmt.Errorf("%s row %d: %s", path, row+1, fmt.Sprintf(format, args...))
}
