package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// BuildStatus represents the outcome of building a commit.
	BuildStatus string

	// DatabaseBackend represents the database backend for results tracking.
	DatabaseBackend string

	// Stage names a pipeline stage.
	Stage string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All build statuses. The zero value means the commit was never attempted.
const (
	BuildUnset   BuildStatus = ""
	BuildSuccess BuildStatus = "Success"
	BuildFailed  BuildStatus = "Failed"
)

// All results backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Pipeline stages in execution order.
const (
	StageClone        Stage = "clone"
	StageRefactorings Stage = "refactorings"
	StageHistory      Stage = "history"
	StageBuild        Stage = "build"
	StageBench        Stage = "bench"
	StageMetrics      Stage = "metrics"
	StageReport       Stage = "report"
)

// AllStages lists the pipeline stages in the order they run.
var AllStages = []Stage{StageClone, StageRefactorings, StageHistory, StageBuild, StageBench, StageMetrics, StageReport}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid results backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidStages lists all valid stage names.
var ValidStages = map[Stage]struct{}{
	StageClone:        {},
	StageRefactorings: {},
	StageHistory:      {},
	StageBuild:        {},
	StageBench:        {},
	StageMetrics:      {},
	StageReport:       {},
}
