// Package export writes the filtered fleet as CSV, JSON or an HTML chart
// page.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/fleethealth/core/aggregate"
	"github.com/kilianp07/fleethealth/core/chart"
	"github.com/kilianp07/fleethealth/core/model"
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "json", "html"}

// Report is the exported fleet subset.
type Report struct {
	Vehicles   []model.Vehicle       `json:"vehicles"`
	Summary    aggregate.Summary     `json:"summary"`
	FleetScore *model.ScoreBreakdown `json:"fleet_score,omitempty"`
}

// Write dispatches on format.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case "csv":
		return WriteCSV(w, r.Vehicles)
	case "json":
		return WriteJSON(w, r)
	case "html":
		return WriteHTML(w, r)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per vehicle. Missing values are left empty.
func WriteCSV(w io.Writer, vehicles []model.Vehicle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"car_id", "car_type", "final_score", "grade", "efficiency", "last_charge", "age_string", "collection_period"}); err != nil {
		return err
	}
	for _, v := range vehicles {
		var eff, last string
		if v.Efficiency != nil {
			eff = strconv.FormatFloat(*v.Efficiency, 'f', -1, 64)
		}
		if v.LastCharge != nil {
			last = *v.LastCharge
		}
		rec := []string{
			v.ID,
			v.CarType,
			strconv.FormatFloat(v.FinalScore, 'f', -1, 64),
			string(v.Grade),
			eff,
			last,
			v.AgeString,
			v.CollectionPeriod,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHTML renders the score ranking, the grade distribution and, when
// present, the fleet factor radar as one HTML page.
func WriteHTML(w io.Writer, r Report) error {
	page := components.NewPage()
	page.PageTitle = "Fleet battery health"
	page.AddCharts(scoreBar(r.Vehicles), gradePie(r.Summary))
	if r.FleetScore != nil {
		page.AddCharts(factorRadar(*r.FleetScore))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func scoreBar(vehicles []model.Vehicle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Battery score by vehicle"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Vehicle"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 100}),
	)
	sorted := chart.SortByScore(vehicles)
	ids := make([]string, 0, len(sorted))
	data := make([]opts.BarData, 0, len(sorted))
	for _, v := range sorted {
		ids = append(ids, v.ID)
		data = append(data, opts.BarData{
			Value:     v.FinalScore,
			ItemStyle: &opts.ItemStyle{Color: chart.GradeColor(v.Grade)},
		})
	}
	bar.SetXAxis(ids).AddSeries("Score", data)
	return bar
}

func gradePie(s aggregate.Summary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Grade distribution"}))
	cats := chart.GradeCategories([]float64{float64(s.Excellent), float64(s.Good), float64(s.Normal), float64(s.Bad)})
	items := make([]opts.PieData, 0, len(cats))
	for _, c := range cats {
		items = append(items, opts.PieData{
			Name:      c.Label,
			Value:     c.Value,
			ItemStyle: &opts.ItemStyle{Color: c.Color},
		})
	}
	pie.AddSeries("Grades", items).SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
	)
	return pie
}

func factorRadar(b model.ScoreBreakdown) *charts.Radar {
	radar := charts.NewRadar()
	indicators := make([]*opts.Indicator, 0, len(model.Factors))
	values := make([]float32, 0, len(model.Factors))
	for _, f := range model.Factors {
		indicators = append(indicators, &opts.Indicator{Name: chart.FactorLabel(f), Max: 100})
		values = append(values, float32(b.Scores.Get(f)))
	}
	radar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Fleet factor scores"}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)
	radar.AddSeries("Fleet", []opts.RadarData{{Name: "Fleet", Value: values}})
	return radar
}
