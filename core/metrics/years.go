// Package metrics extracts energy and performance figures from benchmark output
// and joins them per commit.
package metrics

import (
	"maps"
	"slices"
	"strings"

	"github.com/huangsam/entran/schema"
)

// DateLayout is the commit date format of the commit table.
const DateLayout = "2006-01-02"

// YearIndex resolves a short identifier to the year of its commit.
// Short identifiers shared by more than one full hash are excluded.
type YearIndex struct {
	years      map[string]string
	collisions map[string][]string
}

// YearFromDate returns the part of a YYYY-MM-DD date before the first dash,
// or "" when the value has no dash.
func YearFromDate(date string) string {
	year, _, found := strings.Cut(date, "-")
	if !found {
		return ""
	}
	return year
}

// NewYearIndex builds an index from the commit table.
func NewYearIndex(commits []schema.CommitRecord) *YearIndex {
	rows := make([][2]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, [2]string{c.Hash, c.Date.Format(DateLayout)})
	}
	return NewYearIndexFromDates(rows)
}

// NewYearIndexFromDates builds an index from raw (hash, date) pairs, as
// read from the commit table CSV.
func NewYearIndexFromDates(rows [][2]string) *YearIndex {
	idx := &YearIndex{years: make(map[string]string), collisions: make(map[string][]string)}
	full := make(map[string]string) // short -> first full hash seen
	for _, row := range rows {
		hash, date := row[0], row[1]
		short := schema.ShortID(hash)
		prev, ok := full[short]
		if !ok {
			full[short] = hash
			idx.years[short] = YearFromDate(date)
			continue
		}
		if prev == hash || slices.Contains(idx.collisions[short], hash) {
			continue
		}
		if len(idx.collisions[short]) == 0 {
			idx.collisions[short] = []string{prev}
		}
		idx.collisions[short] = append(idx.collisions[short], hash)
	}
	for short := range idx.collisions {
		delete(idx.years, short)
	}
	return idx
}

// Year returns the year for a short identifier, or schema.UnknownYear.
func (y *YearIndex) Year(short string) string {
	if y == nil {
		return schema.UnknownYear
	}
	if year, ok := y.years[short]; ok {
		return year
	}
	return schema.UnknownYear
}

// Collisions returns the short identifiers that map to more than one commit.
func (y *YearIndex) Collisions() map[string][]string {
	if y == nil {
		return nil
	}
	return maps.Clone(y.collisions)
}

// Len is the number of resolvable short identifiers.
func (y *YearIndex) Len() int {
	if y == nil {
		return 0
	}
	return len(y.years)
}
