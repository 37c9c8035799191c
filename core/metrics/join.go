package metrics

import (
	"strings"

	"github.com/huangsam/entran/schema"
)

// EnergyAverages maps short identifiers to their formatted energy average.
// Blank identifiers are skipped and a later record replaces an earlier one.
func EnergyAverages(energy []schema.EnergyRecord) map[string]string {
	out := make(map[string]string, len(energy))
	for _, e := range energy {
		short := strings.TrimSpace(e.ShortID)
		if short == "" {
			continue
		}
		out[short] = schema.FormatAverage(e.Average)
	}
	return out
}

// Join left-joins performance rows with energy averages on the short
// identifier. Every performance row is kept, in order; rows without energy
// data get an empty average.
func Join(perf []schema.PerfRecord, averages map[string]string) []schema.CombinedRecord {
	out := make([]schema.CombinedRecord, 0, len(perf))
	for _, p := range perf {
		out = append(out, schema.CombinedRecord{
			ShortID:   p.ShortID,
			Score:     p.Score,
			RawScore:  p.RawScore,
			Year:      p.Year,
			EnergyAvg: averages[strings.TrimSpace(p.ShortID)],
		})
	}
	return out
}
