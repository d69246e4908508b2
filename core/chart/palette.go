package chart

import "github.com/kilianp07/fleethealth/core/model"

// Grade colors. Unknown grades use ColorDefault.
const (
	ColorExcellent = "#4CAF50"
	ColorGood      = "#2196F3"
	ColorNormal    = "#FFC107"
	ColorBad       = "#FF9800"
	ColorDefault   = "#F44336"
)

// GradeColor returns the fixed color of g.
func GradeColor(g model.Grade) string {
	switch g {
	case model.GradeExcellent:
		return ColorExcellent
	case model.GradeGood:
		return ColorGood
	case model.GradeNormal:
		return ColorNormal
	case model.GradeBad:
		return ColorBad
	default:
		return ColorDefault
	}
}

// FactorLabel is the short axis label of f.
func FactorLabel(f model.Factor) string {
	switch f {
	case model.FactorEfficiency:
		return "Efficiency"
	case model.FactorTemperature:
		return "Temperature"
	case model.FactorCellImbalance:
		return "Cell balance"
	case model.FactorDrivingHabit:
		return "Driving"
	case model.FactorChargingPattern:
		return "Charging"
	}
	return ""
}
