package chart

import (
	"math"
	"strconv"

	"github.com/kilianp07/fleethealth/core/scoring"
)

const (
	CurveMarginX  = 50.0
	CurveBottom   = 30.0
	CurveStep     = 0.1
	CurveYTicks   = 10
	CurveLabelGap = 10.0

	// CurveMaxSamples bounds the samples of one curve; wider domains are
	// sampled with a coarser step.
	CurveMaxSamples = 1000
	CurveMaxVGrid   = 24

	// EfficiencyMinDomain keeps the efficiency axis at least this wide.
	EfficiencyMinDomain = 12.0

	TemperatureDomainMin = 0.0
	TemperatureDomainMax = 50.0
	TemperatureLow       = 20.0
)

// Reference and marker colors.
const (
	ColorLowReference  = "#f44336"
	ColorHighReference = "#4CAF50"
	ColorMarker        = "#ff9800"
	ColorCurve         = "#667eea"
)

// Sample is one evaluated point of a scoring curve.
type Sample struct {
	X     float64 `json:"x"`
	Score float64 `json:"score"`
	At    Point   `json:"at"`
}

// Reference is a dashed vertical guide at a notable input value.
type Reference struct {
	Value float64 `json:"value"`
	Line  Line    `json:"line"`
	Color string  `json:"color"`
}

// Marker flags the vehicle's own input value on the curve.
type Marker struct {
	Value float64 `json:"value"`
	Score float64 `json:"score"`
	Line  Line    `json:"line"`
	At    Point   `json:"at"`
}

// Curve is a sampled piecewise scoring function mapped onto pixels.
type Curve struct {
	NoData     bool        `json:"no_data"`
	XMin       float64     `json:"x_min"`
	XMax       float64     `json:"x_max"`
	Plot       Rect        `json:"plot"`
	Samples    []Sample    `json:"samples"`
	Polyline   Path        `json:"polyline"`
	Area       Path        `json:"area,omitempty"`
	VGrid      []Line      `json:"v_grid"`
	HGrid      []Line      `json:"h_grid"`
	XTicks     []Label     `json:"x_ticks"`
	YTicks     []Label     `json:"y_ticks"`
	References []Reference `json:"references"`
	Marker     *Marker     `json:"marker,omitempty"`
}

type curveFrame struct {
	plot Rect
	x    LinearScale
	y    LinearScale
}

func newFrame(b Box, xMin, xMax float64) curveFrame {
	plot := Rect{X: CurveMarginX, Y: 0, Width: b.Width - 2*CurveMarginX, Height: b.Height - CurveBottom}
	return curveFrame{
		plot: plot,
		x:    LinearScale{DomainMin: xMin, DomainMax: xMax, RangeMin: plot.X, RangeMax: plot.X + plot.Width},
		y:    LinearScale{DomainMin: 0, DomainMax: 100, RangeMin: plot.Height, RangeMax: 0},
	}
}

func (f curveFrame) at(x, score float64) Point { return Point{X: f.x.Map(x), Y: f.y.Map(score)} }

func (f curveFrame) vertical(x float64) Line {
	px := f.x.Map(x)
	return Line{From: Point{X: px, Y: 0}, To: Point{X: px, Y: f.plot.Height}}
}

func emptyCurve(xMin, xMax float64) Curve {
	return Curve{
		NoData: true, XMin: xMin, XMax: xMax,
		Samples: []Sample{}, VGrid: []Line{}, HGrid: []Line{},
		XTicks: []Label{}, YTicks: []Label{}, References: []Reference{},
	}
}

// sampleCurve evaluates score on an index based grid so the last sample
// lands on xMax without float drift.
func sampleCurve(b Box, xMin, xMax float64, vSteps int, score func(float64) float64) Curve {
	out := emptyCurve(xMin, xMax)
	f := newFrame(b, xMin, xMax)
	if !b.Valid() || f.plot.Width <= 0 || f.plot.Height <= 0 || xMax <= xMin {
		return out
	}
	out.NoData = false
	out.Plot = f.plot

	step := CurveStep
	n := int(math.Round((xMax - xMin) / step))
	if n > CurveMaxSamples-1 {
		n = CurveMaxSamples - 1
		step = (xMax - xMin) / float64(n)
	}
	out.Samples = make([]Sample, 0, n+1)
	var line Path
	for i := 0; i <= n; i++ {
		x := xMin + float64(i)*step
		if i == n {
			x = xMax
		}
		s := score(x)
		p := f.at(x, s)
		out.Samples = append(out.Samples, Sample{X: x, Score: s, At: p})
		if i == 0 {
			line = line.MoveTo(p)
		} else {
			line = line.LineTo(p)
		}
	}
	out.Polyline = line

	vSteps = min(max(vSteps, 1), CurveMaxVGrid)
	for i := 0; i <= vSteps; i++ {
		out.VGrid = append(out.VGrid, f.vertical(xMin+(xMax-xMin)*float64(i)/float64(vSteps)))
	}
	for i := 0; i <= CurveYTicks; i++ {
		v := float64(i) * 100 / CurveYTicks
		y := f.y.Map(v)
		out.HGrid = append(out.HGrid, Line{From: Point{X: f.plot.X, Y: y}, To: Point{X: f.plot.X + f.plot.Width, Y: y}})
		out.YTicks = append(out.YTicks, Label{At: Point{X: f.plot.X - 5, Y: y}, Text: strconv.Itoa(int(v))})
	}
	return out
}

func (c *Curve) addMarker(b Box, xMin, xMax float64, current *float64, score func(float64) float64) {
	if current == nil || c.NoData || math.IsNaN(*current) || math.IsInf(*current, 0) {
		return
	}
	f := newFrame(b, xMin, xMax)
	s := score(*current)
	x := clamp(*current, xMin, xMax)
	c.Marker = &Marker{Value: *current, Score: s, Line: f.vertical(x), At: f.at(x, s)}
}

func (c *Curve) addReference(b Box, v float64, color string) {
	f := newFrame(b, c.XMin, c.XMax)
	c.References = append(c.References, Reference{Value: v, Line: f.vertical(v), Color: color})
}

// EfficiencyDomain returns the visible efficiency axis for band r and the
// vehicle's current value. The axis stretches to show the current value up
// to twice the band maximum.
func EfficiencyDomain(r scoring.Range, current *float64) (float64, float64) {
	hi := r.Max
	if current != nil && *current > hi && !math.IsInf(*current, 0) {
		hi = math.Min(*current, math.Max(EfficiencyMinDomain, 2*r.Max))
	}
	xMin := math.Max(0, math.Floor(r.Min)-1)
	xMax := math.Max(EfficiencyMinDomain, math.Ceil(hi)+1)
	return xMin, xMax
}

// EfficiencyCurve samples the efficiency score over band r with reference
// lines at both thresholds. An inverted or empty band yields NoData.
func EfficiencyCurve(b Box, r scoring.Range, current *float64) Curve {
	xMin, xMax := EfficiencyDomain(r, current)
	if !(r.Min < r.Max) {
		return emptyCurve(xMin, xMax)
	}
	score := func(x float64) float64 { return scoring.EfficiencyScore(x, r) }
	c := sampleCurve(b, xMin, xMax, int(math.Ceil(xMax-xMin)), score)
	if c.NoData {
		return c
	}
	c.addReference(b, r.Min, ColorLowReference)
	c.addReference(b, r.Max, ColorHighReference)
	c.addMarker(b, xMin, xMax, current, score)

	f := newFrame(b, xMin, xMax)
	step := math.Max(1, math.Ceil((xMax-xMin)/12))
	for v := math.Ceil(xMin/step) * step; v <= xMax; v += step {
		c.XTicks = append(c.XTicks, Label{At: Point{X: f.x.Map(v), Y: b.Height - CurveLabelGap}, Text: strconv.FormatFloat(v, 'f', 1, 64)})
	}
	return c
}

// TemperatureCurve samples the temperature score over 0..50 °C with the
// area under the curve filled and reference lines at 20 and 30 °C.
func TemperatureCurve(b Box, current *float64) Curve {
	c := sampleCurve(b, TemperatureDomainMin, TemperatureDomainMax, 10, scoring.TemperatureScore)
	if c.NoData {
		return c
	}
	f := newFrame(b, c.XMin, c.XMax)
	area := append(Path(nil), c.Polyline...)
	area = area.LineTo(Point{X: f.x.Map(c.XMax), Y: f.plot.Height})
	area = area.LineTo(Point{X: f.x.Map(c.XMin), Y: f.plot.Height})
	c.Area = area.Close()

	c.addReference(b, TemperatureLow, ColorLowReference)
	c.addReference(b, scoring.OptimalTemperature, ColorHighReference)
	c.addMarker(b, c.XMin, c.XMax, current, scoring.TemperatureScore)
	for v := TemperatureDomainMin; v <= TemperatureDomainMax; v += 5 {
		c.XTicks = append(c.XTicks, Label{At: Point{X: f.x.Map(v), Y: b.Height - CurveLabelGap}, Text: strconv.Itoa(int(v))})
	}
	return c
}
