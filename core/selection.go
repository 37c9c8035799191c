package core

import "github.com/huangsam/entran/schema"

// SelectCandidates returns the commits whose refactoring count reaches
// threshold, in table order. The bound is inclusive.
func SelectCandidates(commits []schema.CommitRecord, threshold int) []schema.CommitRecord {
	var out []schema.CommitRecord
	for _, c := range commits {
		if c.Refactorings >= threshold {
			out = append(out, c)
		}
	}
	return out
}

// SelectBuildable narrows the candidates to those whose build succeeded in
// the first pass.
func SelectBuildable(commits []schema.CommitRecord, builds []schema.BuildRecord, threshold int) []schema.CommitRecord {
	status := make(map[string]schema.BuildStatus, len(builds))
	for _, b := range builds {
		status[b.Commit] = b.Status
	}
	var out []schema.CommitRecord
	for _, c := range SelectCandidates(commits, threshold) {
		if status[c.Hash] == schema.BuildSuccess {
			out = append(out, c)
		}
	}
	return out
}
