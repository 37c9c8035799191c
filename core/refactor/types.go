package refactor

import (
	"regexp"
	"slices"

	"github.com/huangsam/entran/schema"
)

var typePattern = regexp.MustCompile(`"type"\s*:\s*"([^"]+)"`)

// CountTypes counts every "type": "<value>" occurrence in the raw report text,
// regardless of nesting. Results are ordered by occurrences descending, with
// ties kept in first-seen order.
func CountTypes(data []byte) []schema.TypeCount {
	index := make(map[string]int)
	var counts []schema.TypeCount
	for _, m := range typePattern.FindAllSubmatch(data, -1) {
		name := string(m[1])
		if i, ok := index[name]; ok {
			counts[i].Occurrences++
			continue
		}
		index[name] = len(counts)
		counts = append(counts, schema.TypeCount{Type: name, Occurrences: 1})
	}
	slices.SortStableFunc(counts, func(a, b schema.TypeCount) int {
		return b.Occurrences - a.Occurrences
	})
	return counts
}
