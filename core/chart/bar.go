package chart

import (
	"math"
	"sort"
	"strconv"

	"github.com/kilianp07/fleethealth/core/model"
)

const (
	BarCeiling      = 100.0
	BarMarginX      = 50.0
	BarTop          = 20.0
	BarBottom       = 80.0 // reserved below the plot for rotated labels
	BarMinWidth     = 2.0
	BarGridLines    = 6
	BarMaxLabels    = 10
	BarLabelIDLen   = 8
	BarLabelOffsetY = 30.0
)

// Bar is one vehicle's bar. Width is the drawn width, one pixel narrower
// than the slot so neighbouring bars stay apart, and never below
// BarMinWidth. At the minimum slot bars touch.
type Bar struct {
	ID    string      `json:"id"`
	Grade model.Grade `json:"grade"`
	Value float64     `json:"value"`
	Color string      `json:"color"`
	Rect  Rect        `json:"rect"`
	Slot  float64     `json:"slot"`
}

// GridLine is a horizontal guide with its value label.
type GridLine struct {
	Line  Line    `json:"line"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Label is a text anchor. Rotation is in radians.
type Label struct {
	At       Point   `json:"at"`
	Text     string  `json:"text"`
	Rotation float64 `json:"rotation,omitempty"`
}

// BarChart is the geometry of the per-vehicle score chart.
type BarChart struct {
	NoData  bool       `json:"no_data"`
	Plot    Rect       `json:"plot"`
	Bars    []Bar      `json:"bars"`
	Grid    []GridLine `json:"grid"`
	XLabels []Label    `json:"x_labels"`
}

// SortByScore returns a copy of vs ordered by descending final score. Ties
// keep their input order. The input slice is left untouched.
func SortByScore(vs []model.Vehicle) []model.Vehicle {
	out := append([]model.Vehicle(nil), vs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

// Bars lays out one bar per vehicle in the given order. Callers pass the
// output of SortByScore. An empty set yields NoData.
func Bars(b Box, sorted []model.Vehicle) BarChart {
	plot := Rect{X: BarMarginX, Y: BarTop, Width: b.Width - 2*BarMarginX, Height: b.Height - BarBottom}
	out := BarChart{Plot: plot, Bars: []Bar{}, Grid: []GridLine{}, XLabels: []Label{}}
	if len(sorted) == 0 || !b.Valid() || plot.Width <= 0 || plot.Height <= 0 {
		out.NoData = true
		return out
	}

	for i := 0; i < BarGridLines; i++ {
		y := plot.Y + plot.Height*float64(i)/float64(BarGridLines-1)
		v := BarCeiling - float64(i)*BarCeiling/float64(BarGridLines-1)
		out.Grid = append(out.Grid, GridLine{
			Line:  Line{From: Point{X: plot.X, Y: y}, To: Point{X: plot.X + plot.Width, Y: y}},
			Value: v,
			Label: strconv.FormatFloat(v, 'f', -1, 64),
		})
	}

	n := len(sorted)
	slot := math.Max(BarMinWidth, plot.Width/float64(n))
	scale := LinearScale{DomainMin: 0, DomainMax: BarCeiling, RangeMin: 0, RangeMax: plot.Height}
	for i, v := range sorted {
		val := clamp(v.FinalScore, 0, BarCeiling)
		h := scale.Map(val)
		out.Bars = append(out.Bars, Bar{
			ID:    v.ID,
			Grade: v.Grade,
			Value: val,
			Color: GradeColor(v.Grade),
			Slot:  slot,
			Rect: Rect{
				X:      plot.X + float64(i)*slot,
				Y:      plot.Y + plot.Height - h,
				Width:  math.Max(BarMinWidth, slot-1),
				Height: h,
			},
		})
	}

	step := max(1, n/BarMaxLabels)
	for i := 0; i < n; i += step {
		out.XLabels = append(out.XLabels, Label{
			At:       Point{X: plot.X + float64(i)*slot + slot/2, Y: b.Height - BarLabelOffsetY},
			Text:     truncate(sorted[i].ID, BarLabelIDLen),
			Rotation: -math.Pi / 4,
		})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
