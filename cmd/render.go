package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kilianp07/fleethealth/core/chart"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/view"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func gradeStyle(g model.Grade) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(chart.GradeColor(g)))
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func floatOrDash(f *float64, format string) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf(format, *f)
}

func renderOverview(w io.Writer, v view.View) {
	s := v.Summary
	fmt.Fprintln(w, headerStyle.Render("Fleet battery health"))
	fmt.Fprintf(w, "%s grade=%s car_type=%s search=%q\n", dimStyle.Render("filter"), v.Filter.Grade, v.Filter.CarType, v.Filter.Search)
	fmt.Fprintf(w, "vehicles %d  avg health %.1f  avg efficiency %.2f km/kWh  est. mileage %.0f km\n",
		s.Total, s.AvgHealth, s.AvgEfficiency, s.TotalMileageKm)
	counts := []int{s.Excellent, s.Good, s.Normal, s.Bad}
	parts := make([]string, 0, len(model.Grades))
	for i, g := range model.Grades {
		parts = append(parts, gradeStyle(g).Render(fmt.Sprintf("%s %d", g, counts[i])))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
	if b := v.FleetScore; b != nil {
		fmt.Fprintf(w, "%s %.1f (%s)\n", dimStyle.Render("fleet score"), b.FinalScore, b.Reliability)
		for _, f := range model.Factors {
			fmt.Fprintf(w, "  %-13s %5.1f  p%3.0f\n", chart.FactorLabel(f), b.Scores.Get(f), b.Percentiles.Get(f))
		}
	}
	if v.Notice != "" {
		fmt.Fprintln(w, noticeStyle.Render(v.Notice))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-14s %-12s %6s  %-9s %8s  %s", "VEHICLE", "TYPE", "SCORE", "GRADE", "KM/KWH", "LAST CHARGE")))
	for _, vh := range chart.SortByScore(v.Filtered) {
		grade := gradeStyle(vh.Grade).Render(fmt.Sprintf("%-9s", vh.Grade))
		fmt.Fprintf(w, "%-14s %-12s %6.1f  %s %8s  %s\n",
			vh.ID, vh.CarType, vh.FinalScore, grade, floatOrDash(vh.Efficiency, "%.2f"), orDash(vh.LastCharge))
	}
}

func renderDetail(w io.Writer, d view.DetailView) {
	if d.Payload == nil {
		fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf("vehicle %s: %s", d.VehicleID, d.Phase)))
		return
	}
	p := d.Payload
	b := p.BasicInfo
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Vehicle %s (%s)", b.CarID, b.CarType)))
	fmt.Fprintf(w, "age %s  model %s/%s  collected %s\n", b.AgeString, b.ModelYear, b.ModelMonth, b.CollectionPeriod)
	fmt.Fprintf(w, "%s %.1f  weighted avg %.1f\n", dimStyle.Render("battery score"), p.BatteryScore.FinalScore, p.BatteryScore.WeightedAvg)
	if d.SectionsUnknown {
		fmt.Fprintln(w, dimStyle.Render("segment counts unknown"))
	} else {
		sc := p.SectionCounts
		fmt.Fprintf(w, "segments drive %d  parking %d  fast %d  slow %d\n", sc.Drive, sc.Parking, sc.FastCharge, sc.SlowCharge)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-13s %10s %6s %7s %7s  %s", "FACTOR", "VALUE", "SCORE", "CONTRIB", "PCTL", "SUMMARY")))
	for _, f := range model.Factors {
		c := p.Contributions.Get(f)
		value := floatOrDash(c.Value, "%.2f")
		if c.Value != nil && c.Unit != "" {
			value += " " + c.Unit
		}
		fmt.Fprintf(w, "%-13s %10s %6.1f %7.2f %7.1f  %s\n",
			chart.FactorLabel(f), value, c.Score, c.Contribution, c.Percentile, c.Summary)
	}
	pen := chart.PenaltyRows(p.BatteryScore.Penalties)
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Penalties"))
	for _, r := range pen.Rows {
		fmt.Fprintf(w, "  %-13s %6.1f\n", r.Label, r.Value)
	}
	fmt.Fprintf(w, "  %-13s %6.1f\n", "Total", pen.Total)
}
