// Package chart renders the energy and performance trend of benchmarked commits.
package chart

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/huangsam/entran/schema"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no benchmarked commits to plot")

// Default image size in pixels.
const (
	DefaultWidth  = 1280
	DefaultHeight = 640
)

// Point is one commit on the x axis.
type Point struct {
	ShortID   string
	Year      string
	Score     float64
	HasScore  bool
	Energy    float64
	HasEnergy bool
}

// Points orders the combined table by year, then short identifier.
// Rows whose energy average does not parse are plotted without energy, and
// rows with a non-numeric score without performance.
func Points(records []schema.CombinedRecord) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		p := Point{ShortID: r.ShortID, Year: r.Year, Score: r.Score, HasScore: r.HasScore()}
		if energy, err := strconv.ParseFloat(r.EnergyAvg, 64); err == nil {
			p.Energy, p.HasEnergy = energy, true
		}
		points = append(points, p)
	}
	slices.SortStableFunc(points, func(a, b Point) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.ShortID, b.ShortID))
	})
	return points
}

// Render draws energy on the primary axis and score on the secondary axis as PNG.
func Render(w io.Writer, title string, records []schema.CombinedRecord) error {
	points := Points(records)
	if len(points) == 0 {
		return ErrNoData
	}

	// Ticks set the x range, so the outermost ones are unlabelled padding.
	last := float64(len(points)) - 0.5
	ticks := []gochart.Tick{{Value: -0.5}}
	var (
		energyX, energyY []float64
		scoreX, scoreY   []float64
		previousYear     string
	)
	for i, p := range points {
		x := float64(i)
		if p.Year != previousYear {
			ticks = append(ticks, gochart.Tick{Value: x, Label: p.Year})
			previousYear = p.Year
		}
		if p.HasScore {
			scoreX = append(scoreX, x)
			scoreY = append(scoreY, p.Score)
		}
		if p.HasEnergy {
			energyX = append(energyX, x)
			energyY = append(energyY, p.Energy)
		}
	}
	ticks = append(ticks, gochart.Tick{Value: last})
	if len(scoreX) == 0 && len(energyX) == 0 {
		return ErrNoData
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  "Year",
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  "Energy (uJ)",
			Range: fixedRange(energyY),
		},
		YAxisSecondary: gochart.YAxis{
			Name:  "Score",
			Range: fixedRange(scoreY),
		},
	}
	if len(energyX) > 0 {
		graph.Series = append(graph.Series, gochart.ContinuousSeries{
			Name:    "Energy",
			Style:   gochart.Style{StrokeColor: gochart.ColorBlue, StrokeWidth: 2},
			XValues: energyX,
			YValues: energyY,
		})
	}
	if len(scoreX) > 0 {
		graph.Series = append(graph.Series, gochart.ContinuousSeries{
			Name:    "Performance",
			YAxis:   gochart.YAxisSecondary,
			Style:   gochart.Style{StrokeColor: gochart.ColorRed, StrokeWidth: 2},
			XValues: scoreX,
			YValues: scoreY,
		})
	}
	graph.Elements = []gochart.Renderable{gochart.LegendLeft(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// RenderFile writes the chart to path.
func RenderFile(path, title string, records []schema.CombinedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, title, records); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// fixedRange pins an axis that auto-ranging would collapse: no values, or a
// single distinct value. Nil lets the chart pick the range.
func fixedRange(values []float64) gochart.Range {
	if len(values) == 0 {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
