// Package agg has aggregation logic for the commit history of the target branch.
package agg

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
)

// ExtractHistory runs a single oldest-first git log over branch and returns one
// record per commit, in traversal order.
func ExtractHistory(ctx context.Context, client contract.GitClient, repoPath, branch string) ([]schema.CommitRecord, error) {
	out, err := client.GetHistoryLog(ctx, repoPath, branch)
	if err != nil {
		return nil, err
	}
	return parseHistoryLog(out), nil
}

// commitBuilder accumulates the numstat lines of the commit being parsed.
type commitBuilder struct {
	record schema.CommitRecord
	paths  map[string]struct{}
}

func (b *commitBuilder) finish() schema.CommitRecord {
	b.record.FilesModified = len(b.paths)
	return b.record
}

// parseHistoryLog processes the git log output into commit records.
func parseHistoryLog(out []byte) []schema.CommitRecord {
	lines := strings.Split(string(out), "\n")
	var commits []schema.CommitRecord
	var current *commitBuilder

	for _, l := range lines {
		l = strings.Trim(l, " \t\r\n'")

		if strings.HasPrefix(l, "--") {
			// Commit header line
			hash, date, ok := parseCommitHeader(l)
			if !ok {
				continue
			}
			if current != nil {
				commits = append(commits, current.finish())
			}
			current = &commitBuilder{
				record: schema.CommitRecord{Hash: hash, Date: date},
				paths:  make(map[string]struct{}),
			}
			continue
		}
		if l == "" || current == nil {
			continue
		}

		// File stats line
		path, add, del, ok := parseFileStatsLine(l)
		if !ok {
			continue
		}
		current.record.Insertions += add
		current.record.Deletions += del
		current.paths[path] = struct{}{}
	}
	if current != nil {
		commits = append(commits, current.finish())
	}
	return commits
}

// parseCommitHeader extracts the hash and committer date from a header line.
// The date is kept at its own offset so that its calendar day matches git's.
func parseCommitHeader(line string) (string, time.Time, bool) {
	if !strings.HasPrefix(line, "--") || len(line) < 4 { // --x|y minimum
		return "", time.Time{}, false
	}
	hash, dateStr, found := strings.Cut(line[2:], "|")
	if !found || hash == "" {
		return "", time.Time{}, false
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return hash, time.Time{}, true
	}
	return hash, date, true
}

// parseFileStatsLine parses a numstat line into the path it touched and its churn.
// Renames are attributed to the new path.
func parseFileStatsLine(line string) (string, int, int, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return "", 0, 0, false
	}

	addStr, delStr, path := parts[0], parts[1], parts[2]
	if strings.Contains(path, " => ") {
		if _, newPath := parseRenamePath(path); newPath != "" {
			path = newPath
		}
	}
	return path, parseChurnValue(addStr), parseChurnValue(delStr), true
}

// parseChurnValue converts a churn string to int, handling "-" as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := path[:braceStart]
	old, renamed, found := strings.Cut(path[braceStart+1:braceEnd], " => ")
	if !found {
		return "", ""
	}
	suffix := path[braceEnd+1:]

	// "{ => dir}/x" style renames leave a doubled separator behind
	oldPath := strings.ReplaceAll(prefix+old+suffix, "//", "/")
	newPath := strings.ReplaceAll(prefix+renamed+suffix, "//", "/")
	return oldPath, newPath
}

// AttachRefactorings sets each commit's refactoring count from counts (absent
// commits get 0) and orders the table by count descending. Ties keep traversal
// order. The input slice is not modified.
func AttachRefactorings(commits []schema.CommitRecord, counts map[string]int) []schema.CommitRecord {
	out := slices.Clone(commits)
	for i := range out {
		out[i].Refactorings = counts[out[i].Hash]
	}
	slices.SortStableFunc(out, func(a, b schema.CommitRecord) int {
		return b.Refactorings - a.Refactorings
	})
	return out
}

// Totals sums insertions and deletions across the commit table.
func Totals(commits []schema.CommitRecord) (insertions, deletions int) {
	for _, c := range commits {
		insertions += c.Insertions
		deletions += c.Deletions
	}
	return insertions, deletions
}
