package model

import "math"

// Grade is one of the four battery-health tiers.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeNormal    Grade = "normal"
	GradeBad       Grade = "bad"
)

// Grades lists the tiers in display order.
var Grades = []Grade{GradeExcellent, GradeGood, GradeNormal, GradeBad}

// Score thresholds separating the tiers.
const (
	ExcellentMinScore = 85.0
	GoodMinScore      = 70.0
	NormalMinScore    = 55.0
)

// Valid reports whether g is one of the four known tiers.
func (g Grade) Valid() bool {
	switch g {
	case GradeExcellent, GradeGood, GradeNormal, GradeBad:
		return true
	}
	return false
}

// GradeFor classifies a final score.
func GradeFor(score float64) Grade {
	switch {
	case score >= ExcellentMinScore:
		return GradeExcellent
	case score >= GoodMinScore:
		return GradeGood
	case score >= NormalMinScore:
		return GradeNormal
	default:
		return GradeBad
	}
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func finite(f float64) float64 {
	if isFinite(f) {
		return f
	}
	return 0
}
