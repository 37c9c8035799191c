package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run tracking.
const (
	runsTable          = "entran_runs"
	commitMetricsTable = "entran_commit_metrics"
)

// sqliteTimeLayout is a fixed-width UTC layout, so stored times sort as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// ResultStoreImpl implements the ResultStore interface.
type ResultStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ResultStore = &ResultStoreImpl{} // Compile-time check

// openDB opens and pings the database of a backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetResultsDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		dsn, dsnErr := mysqlDSN(connStr)
		if dsnErr != nil {
			return nil, dsnErr
		}
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=...", err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}
	return db, nil
}

// mysqlDSN forces time parsing so DATETIME columns scan into time.Time.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := gomysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// NewResultStore creates a new ResultStore with the specified backend and
// migrates its schema to the latest version.
func NewResultStore(backend schema.DatabaseBackend, connStr string) (*ResultStoreImpl, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &ResultStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := migrateLatest(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare results tables: %w", err)
	}
	return &ResultStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store records nothing.
func (rs *ResultStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// rebind rewrites ? placeholders into the backend's syntax.
func (rs *ResultStoreImpl) rebind(query string) string {
	if rs.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeArg converts a time.Time to the appropriate format for the backend.
func (rs *ResultStoreImpl) timeArg(t time.Time) any {
	if rs.backend == schema.SQLiteBackend {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

// timeDest returns a scan destination for a time column and a function that
// resolves it after the scan.
func (rs *ResultStoreImpl) timeDest() (any, func() (*time.Time, error)) {
	if rs.backend == schema.SQLiteBackend {
		var text sql.NullString
		return &text, func() (*time.Time, error) {
			if !text.Valid {
				return nil, nil
			}
			t, err := time.Parse(time.RFC3339Nano, text.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time %q: %w", text.String, err)
			}
			return &t, nil
		}
	}
	var value sql.NullTime
	return &value, func() (*time.Time, error) {
		if !value.Valid {
			return nil, nil
		}
		t := value.Time
		return &t, nil
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *ResultStoreImpl) BeginRun(startTime time.Time, repo, branch string, threshold int, configParams map[string]any) (string, error) {
	if rs.disabled() {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	query := rs.rebind(fmt.Sprintf(`INSERT INTO %s (run_id, repo, branch, threshold, start_time, config_params) VALUES (?, ?, ?, ?, ?, ?)`, runsTable))
	if _, err := rs.db.Exec(query, runID, repo, branch, threshold, rs.timeArg(startTime), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *ResultStoreImpl) EndRun(runID string, endTime time.Time, totalCommits int) error {
	if rs.disabled() {
		return nil
	}

	dest, resolve := rs.timeDest()
	query := rs.rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, runsTable))
	if err := rs.db.QueryRow(query, runID).Scan(dest); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := resolve()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %s has no start_time", runID)
	}

	durationMs := endTime.Sub(*startTime).Milliseconds()
	update := rs.rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_commits = ? WHERE run_id = ?`, runsTable))
	if _, err := rs.db.Exec(update, rs.timeArg(endTime), durationMs, totalCommits, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordCommitMetrics stores the joined metrics of one commit.
func (rs *ResultStoreImpl) RecordCommitMetrics(runID string, record schema.CommitMetricRecord) error {
	if rs.disabled() {
		return nil
	}

	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	query := rs.rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, commit_hash, short_id, year, refactorings, build_status, score, energy_avg, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, commitMetricsTable))
	_, err := rs.db.Exec(query,
		runID, record.CommitHash, record.ShortID, record.Year, record.Refactorings,
		record.BuildStatus, record.Score, record.EnergyAvg, rs.timeArg(recordedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert commit metrics for %s: %w", record.CommitHash, err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *ResultStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the results store.
func (rs *ResultStoreImpl) GetStatus() (schema.ResultsStatus, error) {
	status := schema.ResultsStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	for _, table := range []string{runsTable, commitMetricsTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[runsTable])
	status.TotalCommitsRecorded = int(status.TableSizes[commitMetricsTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	dest, resolve := rs.timeDest()
	lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", runsTable)
	if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, dest); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	last, err := resolve()
	if err != nil {
		return status, err
	}
	if last != nil {
		status.LastRunTime = *last
	}

	dest, resolve = rs.timeDest()
	oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runsTable)
	if err := rs.db.QueryRow(oldestRunQuery).Scan(dest); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	oldest, err := resolve()
	if err != nil {
		return status, err
	}
	if oldest != nil {
		status.OldestRunTime = *oldest
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (rs *ResultStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo, branch, threshold, start_time, end_time, run_duration_ms, total_commits, config_params
		FROM %s ORDER BY start_time, run_id`, runsTable)
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		startDest, resolveStart := rs.timeDest()
		endDest, resolveEnd := rs.timeDest()
		var duration sql.NullInt32
		var configParams sql.NullString
		if err := rows.Scan(&record.RunID, &record.Repo, &record.Branch, &record.Threshold,
			startDest, endDest, &duration, &record.TotalCommits, &configParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		start, err := resolveStart()
		if err != nil {
			return nil, err
		}
		if start != nil {
			record.StartTime = *start
		}
		if record.EndTime, err = resolveEnd(); err != nil {
			return nil, err
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		if configParams.Valid {
			record.ConfigParams = &configParams.String
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllCommitMetrics retrieves every commit metric row from the store.
func (rs *ResultStoreImpl) GetAllCommitMetrics() ([]schema.CommitMetricRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, commit_hash, short_id, year, refactorings, build_status, score, energy_avg, recorded_at
		FROM %s ORDER BY run_id, recorded_at, commit_hash`, commitMetricsTable)
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CommitMetricRecord
	for rows.Next() {
		var record schema.CommitMetricRecord
		var score, energy sql.NullFloat64
		dest, resolve := rs.timeDest()
		if err := rows.Scan(&record.RunID, &record.CommitHash, &record.ShortID, &record.Year,
			&record.Refactorings, &record.BuildStatus, &score, &energy, dest); err != nil {
			return nil, fmt.Errorf("failed to scan commit metrics: %w", err)
		}
		recordedAt, err := resolve()
		if err != nil {
			return nil, err
		}
		if recordedAt != nil {
			record.RecordedAt = *recordedAt
		}
		if score.Valid {
			record.Score = &score.Float64
		}
		if energy.Valid {
			record.EnergyAvg = &energy.Float64
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit metrics: %w", err)
	}
	return results, nil
}
