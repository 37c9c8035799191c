// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCommits prints the commit table using the configured output format.
func (ow *OutWriter) WriteCommits(commits []schema.CommitRecord, cfg *contract.Config, duration time.Duration) error {
	return PrintCommits(commits, cfg, duration)
}

// WriteTypeCounts prints the refactoring type frequencies using the configured output format.
func (ow *OutWriter) WriteTypeCounts(counts []schema.TypeCount, cfg *contract.Config, duration time.Duration) error {
	return PrintTypeCounts(counts, cfg, duration)
}

// WriteBuilds prints build outcomes using the configured output format.
func (ow *OutWriter) WriteBuilds(builds []schema.BuildRecord, cfg *contract.Config, duration time.Duration) error {
	return PrintBuilds(builds, cfg, duration)
}

// WriteCombined prints the joined metrics using the configured output format.
func (ow *OutWriter) WriteCombined(records []schema.CombinedRecord, cfg *contract.Config, duration time.Duration) error {
	return PrintCombined(records, cfg, duration)
}
