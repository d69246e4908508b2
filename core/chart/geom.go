// Package chart maps fleet data onto 2-D chart geometry. Every function is
// pure: it takes a bounding box plus semantic input and returns coordinates
// and path descriptions for a renderer to draw. Degenerate input produces a
// result with NoData set instead of degenerate geometry.
package chart

import (
	"math"
	"strconv"
	"strings"
)

// Box is the drawing area in pixels. The origin is the top-left corner and y
// grows downwards.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether b has a positive finite area.
func (b Box) Valid() bool {
	return b.Width > 0 && b.Height > 0 && !math.IsInf(b.Width, 0) && !math.IsInf(b.Height, 0)
}

// Center returns the middle of b.
func (b Box) Center() Point { return Point{X: b.Width / 2, Y: b.Height / 2} }

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polar returns the point at radius r and angle theta around c.
func Polar(c Point, r, theta float64) Point {
	return Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
}

// Dist returns the euclidean distance between p and q.
func Dist(p, q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Line is a straight segment.
type Line struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// LinearScale maps a data domain onto a pixel range.
type LinearScale struct {
	DomainMin float64
	DomainMax float64
	RangeMin  float64
	RangeMax  float64
}

// Map projects v. A zero-width domain maps everything to RangeMin.
func (s LinearScale) Map(v float64) float64 {
	d := s.DomainMax - s.DomainMin
	if d == 0 {
		return s.RangeMin
	}
	return s.RangeMin + (v-s.DomainMin)/d*(s.RangeMax-s.RangeMin)
}

// Op is a path command.
type Op string

const (
	OpMove  Op = "M"
	OpLine  Op = "L"
	OpArc   Op = "A"
	OpClose Op = "Z"
)

// Segment is one path command. Arc segments sweep from Start to End around
// Center; CCW arcs run with decreasing angle.
type Segment struct {
	Op     Op      `json:"op"`
	To     Point   `json:"to,omitempty"`
	Center Point   `json:"center,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Start  float64 `json:"start,omitempty"`
	End    float64 `json:"end,omitempty"`
	CCW    bool    `json:"ccw,omitempty"`
}

// Path is an ordered list of drawing commands.
type Path []Segment

// MoveTo appends a move.
func (p Path) MoveTo(pt Point) Path { return append(p, Segment{Op: OpMove, To: pt}) }

// LineTo appends a straight line.
func (p Path) LineTo(pt Point) Path { return append(p, Segment{Op: OpLine, To: pt}) }

// Arc appends a circular arc. To is set to the arc end point.
func (p Path) Arc(c Point, r, start, end float64, ccw bool) Path {
	return append(p, Segment{Op: OpArc, To: Polar(c, r, end), Center: c, Radius: r, Start: start, End: end, CCW: ccw})
}

// Close appends a close command.
func (p Path) Close() Path { return append(p, Segment{Op: OpClose}) }

// Closed reports whether the path ends with a close command.
func (p Path) Closed() bool { return len(p) > 0 && p[len(p)-1].Op == OpClose }

// SVG renders p as SVG path data. Full circle arcs are split in two halves
// so that they remain drawable.
func (p Path) SVG() string {
	var sb strings.Builder
	for i, s := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch s.Op {
		case OpMove, OpLine:
			sb.WriteString(string(s.Op))
			writePoint(&sb, s.To)
		case OpArc:
			sweep := math.Abs(s.End - s.Start)
			if sweep >= 2*math.Pi-1e-9 {
				mid := s.Start + (s.End-s.Start)/2
				writeArc(&sb, s.Radius, math.Pi, s.CCW, Polar(s.Center, s.Radius, mid))
				sb.WriteByte(' ')
				writeArc(&sb, s.Radius, math.Pi, s.CCW, s.To)
				continue
			}
			writeArc(&sb, s.Radius, sweep, s.CCW, s.To)
		case OpClose:
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

func writeArc(sb *strings.Builder, r, sweep float64, ccw bool, to Point) {
	large, dir := "0", "1"
	if sweep > math.Pi {
		large = "1"
	}
	if ccw {
		dir = "0"
	}
	sb.WriteString("A")
	sb.WriteString(fmtNum(r) + " " + fmtNum(r) + " 0 " + large + " " + dir + " ")
	writePoint(sb, to)
}

func writePoint(sb *strings.Builder, p Point) {
	sb.WriteString(fmtNum(p.X))
	sb.WriteByte(' ')
	sb.WriteString(fmtNum(p.Y))
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, finite(v)))
}
