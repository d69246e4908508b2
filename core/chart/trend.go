package chart

// TrendGridLines is the number of horizontal trend grid intervals.
const TrendGridLines = 4

// TrendChart is the placeholder for historical time series. No per-vehicle
// history is served, so the chart is always NoData.
type TrendChart struct {
	NoData  bool   `json:"no_data"`
	Grid    []Line `json:"grid"`
	Message Label  `json:"message"`
}

// Trend returns the empty time series frame for b.
func Trend(b Box) TrendChart {
	out := TrendChart{NoData: true, Grid: []Line{}}
	if !b.Valid() {
		return out
	}
	for i := 0; i <= TrendGridLines; i++ {
		y := b.Height / TrendGridLines * float64(i)
		out.Grid = append(out.Grid, Line{From: Point{X: 0, Y: y}, To: Point{X: b.Width, Y: y}})
	}
	out.Message = Label{At: b.Center(), Text: "time series data unavailable"}
	return out
}
