// Package scoring holds the battery-health formulas: per-factor scores, the
// age penalty and the weighted final score.
package scoring

import (
	"math"
	"sort"

	"github.com/kilianp07/fleethealth/core/model"
)

// Score bounds shared by every factor curve.
const (
	MinScore = 40.0
	MaxScore = 100.0

	// OptimalTemperature is the mean pack temperature scoring 100.
	OptimalTemperature = 30.0

	// FinalCeiling caps the final score.
	FinalCeiling = 98.0

	// WeightNorm is the sum of the weights the weighted sum is divided by.
	WeightNorm = 0.90

	// DefaultHabitScore applies when no driving or charging data exists.
	DefaultHabitScore = 80.0
)

// Weights per factor.
var Weights = model.FactorScores{
	Efficiency:      0.30,
	Temperature:     0.15,
	CellImbalance:   0.15,
	DrivingHabit:    0.15,
	ChargingPattern: 0.15,
}

// Weight returns the weight of f.
func Weight(f model.Factor) float64 { return Weights.Get(f) }

// Clip bounds s to [MinScore, MaxScore].
func Clip(s float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, s))
}

// EfficiencyScore maps x onto 40..100 over r: 40 at or below Min, 100 at or
// above Max and linear in between.
func EfficiencyScore(x float64, r Range) float64 {
	switch {
	case x <= r.Min:
		return MinScore
	case x >= r.Max:
		return MaxScore
	}
	ratio := (x - r.Min) / (r.Max - r.Min)
	return MinScore + ratio*(MaxScore-MinScore)
}

// TemperatureScore is 100 - 2*(t-30) clipped to 40..100.
func TemperatureScore(t float64) float64 {
	if math.IsNaN(t) {
		return MinScore
	}
	return Clip(100 - 2*(t-OptimalTemperature))
}

// CellImbalanceScore maps a cell voltage spread in volts through a logistic
// centred on 20 mV.
func CellImbalanceScore(v float64) float64 {
	norm := (v - 0.02) / 0.004
	return Clip(100 / (1 + math.Exp(norm)))
}

// DrivingHabit are the raw driving metrics; nil means not measured.
type DrivingHabit struct {
	AccelStd           *float64 `json:"accel_std,omitempty"`
	BrakeStd           *float64 `json:"brake_std,omitempty"`
	DailyDistance      *float64 `json:"daily_distance,omitempty"`
	CumulativeDistance *float64 `json:"cumulative_distance,omitempty"`
}

// DrivingHabitScore prefers acceleration and braking variability and falls
// back to distance based heuristics.
func DrivingHabitScore(h DrivingHabit) float64 {
	if h.AccelStd != nil || h.BrakeStd != nil {
		return Clip(100 - 20*(deref(h.AccelStd)+deref(h.BrakeStd)))
	}
	if h.DailyDistance == nil && h.CumulativeDistance == nil {
		return DefaultHabitScore
	}
	score := DefaultHabitScore
	if d := h.DailyDistance; d != nil {
		switch {
		case *d >= 20 && *d <= 100:
			score += 10
		case *d < 20:
			score -= (20 - *d) * 0.5
		default:
			score -= (*d - 100) * 0.1
		}
	}
	if c := h.CumulativeDistance; c != nil {
		if *c >= 7300 {
			score += 10
		} else {
			score -= (7300 - *c) / 730
		}
	}
	return Clip(score)
}

// ChargingPatternScore penalises charging sessions started at high state of
// charge. A nil ratio scores the default.
func ChargingPatternScore(highSocRatio *float64) float64 {
	if highSocRatio == nil {
		return DefaultHabitScore
	}
	return Clip(100 - 50*(*highSocRatio))
}

// AgePenalty is the piecewise deduction for vehicle age, capped at 7.5 and
// rounded to one decimal.
func AgePenalty(ageYears float64) float64 {
	var p float64
	switch {
	case ageYears <= 1:
		p = ageYears * 1.5
	case ageYears <= 3:
		p = 1.5 + (ageYears-1)*1.2
	case ageYears <= 5:
		p = 3.9 + (ageYears-3)*0.8
	default:
		p = 5.5 + (ageYears-5)*0.4
	}
	p = math.Max(0, math.Min(7.5, p))
	return Round(p, 1)
}

// Metrics are the raw measurements behind one vehicle's score.
type Metrics struct {
	Efficiency     *float64     `json:"efficiency,omitempty"`
	AvgTemperature *float64     `json:"avg_temperature,omitempty"`
	CellImbalance  *float64     `json:"cell_imbalance,omitempty"`
	Driving        DrivingHabit `json:"driving_habit"`
	HighSocRatio   *float64     `json:"high_soc_ratio,omitempty"`
}

// Result is the outcome of Final.
type Result struct {
	Scores      model.FactorScores
	WeightedAvg float64
	AgePenalty  float64
	FinalScore  float64
}

// Final scores m for a vehicle of class c aged ageYears. Missing efficiency,
// temperature or imbalance readings score 0 and are left out of the
// weighted sum; driving habit and charging pattern always count.
func Final(m Metrics, c Class, ageYears float64) Result {
	var res Result
	var sum float64
	if m.Efficiency != nil {
		res.Scores.Efficiency = EfficiencyScore(*m.Efficiency, EfficiencyRange(c, ageYears))
		sum += res.Scores.Efficiency * Weights.Efficiency
	}
	if m.AvgTemperature != nil {
		res.Scores.Temperature = TemperatureScore(*m.AvgTemperature)
		sum += res.Scores.Temperature * Weights.Temperature
	}
	if m.CellImbalance != nil {
		res.Scores.CellImbalance = CellImbalanceScore(*m.CellImbalance)
		sum += res.Scores.CellImbalance * Weights.CellImbalance
	}
	res.Scores.DrivingHabit = DrivingHabitScore(m.Driving)
	sum += res.Scores.DrivingHabit * Weights.DrivingHabit
	res.Scores.ChargingPattern = ChargingPatternScore(m.HighSocRatio)
	sum += res.Scores.ChargingPattern * Weights.ChargingPattern

	res.WeightedAvg = sum / WeightNorm
	res.AgePenalty = AgePenalty(ageYears)
	res.FinalScore = Combine(res.WeightedAvg, res.AgePenalty)
	return res
}

// Combine subtracts the age penalty and clamps to 0..98.
func Combine(weightedAvg, agePenalty float64) float64 {
	return math.Max(0, math.Min(FinalCeiling, weightedAvg-agePenalty))
}

// WeightedAverage recomputes the weighted average of complete scores.
func WeightedAverage(s model.FactorScores) float64 {
	var sum float64
	for _, f := range model.Factors {
		sum += s.Get(f) * Weight(f)
	}
	return sum / WeightNorm
}

// Penalty is the points factor f loses for score s.
func Penalty(f model.Factor, s float64) float64 {
	return math.Max(0, 100-s) * Weight(f)
}

// Contribution is the points factor f adds for score s.
func Contribution(f model.Factor, s float64) float64 {
	return s * Weight(f)
}

// Penalties builds the penalty block for scores and an age penalty.
func Penalties(scores model.FactorScores, agePenalty float64) model.Penalties {
	var p model.Penalties
	for _, f := range model.Factors {
		p.Set(f, Round(Penalty(f, scores.Get(f)), 2))
	}
	p.Age = agePenalty
	return p.Normalize()
}

// Percentile returns the share of values strictly below v, 0..100 rounded.
// An empty population or a zero value yields 0.
func Percentile(values []float64, v float64) float64 {
	if len(values) == 0 || v == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	below := sort.SearchFloat64s(sorted, v)
	return math.Round(float64(below) / float64(len(sorted)) * 100)
}

// Round rounds x to n decimals.
func Round(x float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(x*p) / p
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
