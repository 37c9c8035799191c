package core

import (
	"testing"

	"github.com/huangsam/entran/schema"
	"github.com/stretchr/testify/assert"
)

func TestSelectCandidates(t *testing.T) {
	commits := []schema.CommitRecord{
		{Hash: "a", Refactorings: 35},
		{Hash: "b", Refactorings: 20},
		{Hash: "c", Refactorings: 19},
		{Hash: "d", Refactorings: 0},
	}

	testCases := []struct {
		name      string
		threshold int
		expected  []string
	}{
		{"threshold is inclusive", 20, []string{"a", "b"}},
		{"one below threshold", 19, []string{"a", "b", "c"}},
		{"zero keeps everything", 0, []string{"a", "b", "c", "d"}},
		{"nothing qualifies", 36, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, c := range SelectCandidates(commits, tc.threshold) {
				got = append(got, c.Hash)
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSelectBuildable(t *testing.T) {
	commits := []schema.CommitRecord{
		{Hash: "a", Refactorings: 40},
		{Hash: "b", Refactorings: 30},
		{Hash: "c", Refactorings: 20},
		{Hash: "d", Refactorings: 10},
	}
	builds := []schema.BuildRecord{
		{Commit: "a", Status: schema.BuildSuccess},
		{Commit: "b", Status: schema.BuildFailed, Cause: "boom"},
		{Commit: "c", Status: schema.BuildSuccess},
		{Commit: "d", Status: schema.BuildSuccess},
	}

	var got []string
	for _, c := range SelectBuildable(commits, builds, 20) {
		got = append(got, c.Hash)
	}
	assert.Equal(t, []string{"a", "c"}, got, "below-threshold successes are excluded")
	assert.Empty(t, SelectBuildable(commits, nil, 0))
}
