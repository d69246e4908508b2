// Package aggregate derives summary statistics over a vehicle subset.
package aggregate

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleethealth/core/model"
)

// MileagePerVehicleKm is the fixed per-vehicle distance used for the fleet
// mileage estimate. The dataset carries no odometer readings, so the total is
// an approximation and not a measurement.
const MileagePerVehicleKm = 47000.0

// Summary aggregates a vehicle subset. Excellent+Good+Normal+Bad == Total.
type Summary struct {
	Total          int     `json:"total"`
	Excellent      int     `json:"excellent"`
	Good           int     `json:"good"`
	Normal         int     `json:"normal"`
	Bad            int     `json:"bad"`
	TotalMileageKm float64 `json:"total_mileage_km"`
	AvgEfficiency  float64 `json:"avg_efficiency"`
	AvgHealth      float64 `json:"avg_health"`
}

// Summarize computes counts and means for vehicles. Averages are 0 when no
// vehicle carries the field.
func Summarize(vehicles []model.Vehicle) Summary {
	s := Summary{Total: len(vehicles)}
	scores := make([]float64, 0, len(vehicles))
	effs := make([]float64, 0, len(vehicles))
	for _, v := range vehicles {
		switch v.Grade {
		case model.GradeExcellent:
			s.Excellent++
		case model.GradeGood:
			s.Good++
		case model.GradeNormal:
			s.Normal++
		default:
			// grades are normalized on load; anything else counts as bad
			s.Bad++
		}
		scores = append(scores, v.FinalScore)
		if v.Efficiency != nil {
			effs = append(effs, *v.Efficiency)
		}
	}
	s.TotalMileageKm = float64(s.Total) * MileagePerVehicleKm
	s.AvgHealth = mean(scores)
	s.AvgEfficiency = mean(effs)
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// GradeCounts returns the per-grade counts in model.Grades order.
func (s Summary) GradeCounts() []float64 {
	return []float64{float64(s.Excellent), float64(s.Good), float64(s.Normal), float64(s.Bad)}
}

// GradeSummary converts s to its wire form.
func (s Summary) GradeSummary() model.GradeSummary {
	return model.GradeSummary{Total: s.Total, Excellent: s.Excellent, Good: s.Good, Normal: s.Normal, Bad: s.Bad}
}

// Stats converts s to the wire performance stats.
func (s Summary) Stats() model.PerformanceStats {
	return model.PerformanceStats{
		TotalMileage:     s.TotalMileageKm,
		AvgEfficiency:    s.AvgEfficiency,
		AvgBatteryHealth: s.AvgHealth,
	}
}
