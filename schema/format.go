package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatAverage renders an energy average with two decimals.
func FormatAverage(avg float64) string {
	return fmt.Sprintf("%.2f", avg)
}

// FormatScore renders a score with the shortest exact representation,
// always keeping a decimal point.
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// NullScore is the RawScore of a score reported as JSON null.
const NullScore = "null"

// ScoreCell renders a score table cell. A non-numeric score is written
// verbatim, except null which is an empty cell.
func ScoreCell(score float64, raw string) string {
	switch raw {
	case "":
		return FormatScore(score)
	case NullScore:
		return ""
	default:
		return raw
	}
}

// ParseScoreCell reverses ScoreCell. Cells that are not finite numbers come
// back as a raw score.
func ParseScoreCell(cell string) (float64, string) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, NullScore
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, cell
	}
	return v, ""
}
