package chart

import (
	"math"

	"github.com/kilianp07/fleethealth/core/model"
)

const (
	// RadarPadding is the gap between the outer ring and the box edge.
	RadarPadding = 40.0
	// RadarLabelOffset places axis labels outside the outer ring.
	RadarLabelOffset = 20.0
	// RadarRings is the number of concentric grid rings.
	RadarRings = 4
)

// RadarAxis is one spoke of the radar.
type RadarAxis struct {
	Factor model.Factor `json:"factor"`
	Label  string       `json:"label"`
	Angle  float64      `json:"angle"`
	Spoke  Line         `json:"spoke"`
	Anchor Point        `json:"anchor"`
	Value  float64      `json:"value"`
}

// RadarChart is the geometry of a five axis score plot.
type RadarChart struct {
	NoData   bool        `json:"no_data"`
	Center   Point       `json:"center"`
	Radius   float64     `json:"radius"`
	Rings    []float64   `json:"rings"`
	Axes     []RadarAxis `json:"axes"`
	Vertices []Point     `json:"vertices"`
	Polygon  Path        `json:"polygon"`
}

// RadarAngle is the angle of axis i out of n; axis 0 points up.
func RadarAngle(i, n int) float64 {
	return 2*math.Pi*float64(i)/float64(n) - math.Pi/2
}

// Radar lays out scores on the five factor axes. Values are clamped to
// [0,100]. A nil score set or a box too small for the padding yields NoData.
func Radar(b Box, scores *model.FactorScores) RadarChart {
	c := b.Center()
	r := math.Min(c.X, c.Y) - RadarPadding
	out := RadarChart{Center: c, Radius: r, Rings: []float64{}, Axes: []RadarAxis{}, Vertices: []Point{}}
	if scores == nil || !b.Valid() || r <= 0 {
		out.NoData = true
		return out
	}
	for k := 1; k <= RadarRings; k++ {
		out.Rings = append(out.Rings, r*float64(k)/RadarRings)
	}
	n := len(model.Factors)
	var poly Path
	for i, f := range model.Factors {
		theta := RadarAngle(i, n)
		v := clamp(scores.Get(f), 0, 100)
		vertex := Polar(c, r*v/100, theta)
		out.Axes = append(out.Axes, RadarAxis{
			Factor: f,
			Label:  FactorLabel(f),
			Angle:  theta,
			Spoke:  Line{From: c, To: Polar(c, r, theta)},
			Anchor: Polar(c, r+RadarLabelOffset, theta),
			Value:  v,
		})
		out.Vertices = append(out.Vertices, vertex)
		if i == 0 {
			poly = poly.MoveTo(vertex)
		} else {
			poly = poly.LineTo(vertex)
		}
	}
	out.Polygon = poly.Close()
	return out
}
