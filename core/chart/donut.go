package chart

import (
	"math"

	"github.com/kilianp07/fleethealth/core/model"
)

const (
	// DonutPadding is the gap between the outer arc and the box edge.
	DonutPadding = 20.0
	// DonutHoleRatio is the inner radius as a share of the outer radius.
	DonutHoleRatio = 0.6
	// DonutStartAngle puts the first slice at twelve o'clock.
	DonutStartAngle = -math.Pi / 2
)

// Category is one donut input value.
type Category struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Slice is the annulus sector of one category. Empty categories keep their
// position with a zero sweep and no path.
type Slice struct {
	Category
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Sweep   float64 `json:"sweep"`
	Percent float64 `json:"percent"`
	Path    Path    `json:"path,omitempty"`
}

// DonutChart is the geometry of a ring chart with a centre label.
type DonutChart struct {
	NoData          bool    `json:"no_data"`
	Center          Point   `json:"center"`
	Outer           float64 `json:"outer"`
	Inner           float64 `json:"inner"`
	Total           float64 `json:"total"`
	Slices          []Slice `json:"slices"`
	Dominant        string  `json:"dominant,omitempty"`
	DominantPercent float64 `json:"dominant_percent"`
}

// GradeCategories turns per-grade counts in model.Grades order into donut
// categories.
func GradeCategories(counts []float64) []Category {
	out := make([]Category, 0, len(model.Grades))
	for i, g := range model.Grades {
		var v float64
		if i < len(counts) {
			v = counts[i]
		}
		out = append(out, Category{Label: string(g), Value: v, Color: GradeColor(g)})
	}
	return out
}

// Donut lays out cats clockwise from twelve o'clock. Negative or non-finite
// values count as zero. A zero total yields NoData and no slices.
func Donut(b Box, cats []Category) DonutChart {
	c := b.Center()
	outer := math.Min(c.X, c.Y) - DonutPadding
	out := DonutChart{Center: c, Outer: outer, Inner: outer * DonutHoleRatio, Slices: []Slice{}}

	values := make([]float64, len(cats))
	for i, cat := range cats {
		values[i] = math.Max(0, finite(cat.Value))
		out.Total += values[i]
	}
	if out.Total == 0 || !b.Valid() || outer <= 0 {
		out.NoData = true
		return out
	}

	angle := DonutStartAngle
	best := -1
	for i, cat := range cats {
		v := values[i]
		sweep := 2 * math.Pi * v / out.Total
		s := Slice{
			Category: Category{Label: cat.Label, Value: v, Color: cat.Color},
			Start:    angle,
			End:      angle + sweep,
			Sweep:    sweep,
			Percent:  math.Round(v / out.Total * 100),
		}
		if v > 0 {
			s.Path = annulusSector(c, out.Outer, out.Inner, s.Start, s.End)
		}
		if best < 0 || v > values[best] {
			best = i
		}
		out.Slices = append(out.Slices, s)
		angle += sweep
	}
	out.Dominant = cats[best].Label
	out.DominantPercent = out.Slices[best].Percent
	return out
}

// annulusSector traces the outer arc forward, then the inner arc backward.
func annulusSector(c Point, outer, inner, start, end float64) Path {
	var p Path
	p = p.MoveTo(Polar(c, outer, start))
	p = p.Arc(c, outer, start, end, false)
	p = p.LineTo(Polar(c, inner, end))
	p = p.Arc(c, inner, end, start, true)
	return p.Close()
}
