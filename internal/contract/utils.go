package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/entran/schema"
)

// Color variables for console output.
var (
	SuccessColor = color.New(color.FgGreen, color.Bold) // SuccessColor marks commits that built.
	FailedColor  = color.New(color.FgRed, color.Bold)   // FailedColor marks commits that did not build.
	UnsetColor   = color.New(color.Faint)               // UnsetColor marks commits that were never attempted.
	StageColor   = color.New(color.FgCyan, color.Bold)  // StageColor is used for stage headers.
)

// unsetLabel is what an unattempted build shows in tables.
const unsetLabel = "-"

// GetPlainStatus returns a plain text label for a build status.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainStatus(status schema.BuildStatus) string {
	if status == schema.BuildUnset {
		return unsetLabel
	}
	return string(status)
}

// GetColorStatus returns a colored label for console output (table).
func GetColorStatus(status schema.BuildStatus) string {
	text := GetPlainStatus(status)

	switch status {
	case schema.BuildSuccess:
		return SuccessColor.Sprint(text)
	case schema.BuildFailed:
		return FailedColor.Sprint(text)
	default:
		return UnsetColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// LogStage prints a stage header to stderr.
func LogStage(stage schema.Stage, detail string) {
	_, _ = fmt.Fprintf(os.Stderr, "🔧 %s %s\n", StageColor.Sprint(string(stage)), detail)
}

// GetResultsDBFilePath returns the path to the SQLite DB file for results storage.
func GetResultsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".entran_results.db"
	}
	return filepath.Join(homeDir, ".entran_results.db")
}

// TruncateText truncates s to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to ensure there's space for the "..." and at least one character of content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
