package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/entran/internal/contract"
	"github.com/huangsam/entran/schema"
)

// ScoreIndex is the position of the primary-metric score that represents a
// run. The first benchmark in the harness is a warm-up.
const ScoreIndex = 1

type jmhEntry struct {
	PrimaryMetric *struct {
		Score json.RawMessage `json:"score"`
	} `json:"primaryMetric"`
}

// Scores lists the raw primaryMetric.score values of a JMH JSON result, in order.
// A top level that is not an array yields no scores.
func Scores(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var doc any
		if json.Unmarshal(data, &doc) == nil {
			return nil, nil // valid JSON, not a list
		}
		return nil, fmt.Errorf("%w: %v", contract.ErrMalformedReport, err)
	}

	var scores []json.RawMessage
	for _, raw := range entries {
		var e jmhEntry
		if json.Unmarshal(raw, &e) != nil || e.PrimaryMetric == nil || e.PrimaryMetric.Score == nil {
			continue
		}
		scores = append(scores, e.PrimaryMetric.Score)
	}
	return scores, nil
}

// ParseScore converts a score that is a JSON number or a numeric string.
// Anything else is kept verbatim as the raw score: strings unquoted, null as
// schema.NullScore, other values as their JSON text.
func ParseScore(raw json.RawMessage) (float64, string) {
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return 0, schema.NullScore
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return 0, text
	}
	if strings.TrimSpace(s) == "" {
		return 0, schema.NullScore
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, s
	}
	return v, ""
}

// SelectScore picks the representative score as-is. It returns false only
// when there are not enough scores.
func SelectScore(scores []json.RawMessage) (float64, string, bool) {
	if len(scores) <= ScoreIndex {
		return 0, "", false
	}
	score, raw := ParseScore(scores[ScoreIndex])
	return score, raw, true
}

// ExtractPerf reads every *.json file in dir, in name order. Files with fewer
// than two scores produce no record.
func ExtractPerf(dir string, years *YearIndex) ([]schema.PerfRecord, error) {
	names, err := listFiles(dir, func(name string) bool { return strings.HasSuffix(name, ".json") })
	if err != nil {
		return nil, err
	}

	var records []schema.PerfRecord
	for _, name := range names {
		scores, err := scoresFromFile(filepath.Join(dir, name))
		if err != nil {
			contract.LogWarn("Error processing "+name, err)
			continue
		}
		score, raw, ok := SelectScore(scores)
		if !ok {
			continue
		}
		short := schema.ShortID(name)
		records = append(records, schema.PerfRecord{
			ShortID:  short,
			Score:    score,
			RawScore: raw,
			Year:     years.Year(short),
		})
	}
	return records, nil
}

func scoresFromFile(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Scores(f)
}
