package model

import "math"

// Factor identifies one of the five sub-scores behind a final score.
type Factor int

const (
	FactorEfficiency Factor = iota
	FactorTemperature
	FactorCellImbalance
	FactorDrivingHabit
	FactorChargingPattern
)

// Factors lists the sub-scores in radar axis order.
var Factors = []Factor{
	FactorEfficiency,
	FactorTemperature,
	FactorCellImbalance,
	FactorDrivingHabit,
	FactorChargingPattern,
}

// Key returns the wire name of the factor.
func (f Factor) Key() string {
	switch f {
	case FactorEfficiency:
		return "efficiency"
	case FactorTemperature:
		return "temperature"
	case FactorCellImbalance:
		return "cell_imbalance"
	case FactorDrivingHabit:
		return "driving_habit"
	case FactorChargingPattern:
		return "charging_pattern"
	default:
		return "unknown"
	}
}

func (f Factor) String() string { return f.Key() }

// FactorScores holds one value per factor. It is used for sub-scores (0-100)
// and for fleet percentiles (0-100).
type FactorScores struct {
	Efficiency      float64 `json:"efficiency"`
	Temperature     float64 `json:"temperature"`
	CellImbalance   float64 `json:"cell_imbalance"`
	DrivingHabit    float64 `json:"driving_habit"`
	ChargingPattern float64 `json:"charging_pattern"`
}

// Get returns the value for f.
func (s FactorScores) Get(f Factor) float64 {
	switch f {
	case FactorEfficiency:
		return s.Efficiency
	case FactorTemperature:
		return s.Temperature
	case FactorCellImbalance:
		return s.CellImbalance
	case FactorDrivingHabit:
		return s.DrivingHabit
	case FactorChargingPattern:
		return s.ChargingPattern
	}
	return 0
}

// Set stores v for f.
func (s *FactorScores) Set(f Factor, v float64) {
	switch f {
	case FactorEfficiency:
		s.Efficiency = v
	case FactorTemperature:
		s.Temperature = v
	case FactorCellImbalance:
		s.CellImbalance = v
	case FactorDrivingHabit:
		s.DrivingHabit = v
	case FactorChargingPattern:
		s.ChargingPattern = v
	}
}

// Values returns the factor values in axis order.
func (s FactorScores) Values() []float64 {
	out := make([]float64, len(Factors))
	for i, f := range Factors {
		out[i] = s.Get(f)
	}
	return out
}

// Clamp bounds every value to [0,100]; NaN becomes 0.
func (s FactorScores) Clamp() FactorScores {
	var out FactorScores
	for _, f := range Factors {
		out.Set(f, clamp01(s.Get(f)))
	}
	return out
}

func clamp01(v float64) float64 {
	v = finite(v)
	return math.Max(0, math.Min(100, v))
}

// Penalties are the points deducted per factor plus the age penalty.
type Penalties struct {
	FactorScores
	Age   float64 `json:"age"`
	Total float64 `json:"total"`
}

// Sum adds the six individual penalties.
func (p Penalties) Sum() float64 {
	total := p.Age
	for _, f := range Factors {
		total += p.Get(f)
	}
	return total
}

// Normalize drops negative or non-finite penalties and recomputes Total so
// that it always equals the sum of its parts.
func (p Penalties) Normalize() Penalties {
	for _, f := range Factors {
		p.Set(f, math.Max(0, finite(p.Get(f))))
	}
	p.Age = math.Max(0, finite(p.Age))
	p.Total = p.Sum()
	return p
}

// ScoreBreakdown is the battery score payload shared by the fleet statistics
// and the vehicle detail endpoints.
type ScoreBreakdown struct {
	FinalScore  float64      `json:"final_score"`
	WeightedAvg float64      `json:"weighted_avg,omitempty"`
	Reliability string       `json:"reliability,omitempty"`
	Scores      FactorScores `json:"scores"`
	Penalties   Penalties    `json:"penalties"`
	Percentiles FactorScores `json:"percentiles"`
}

// Normalize clamps scores and percentiles and repairs the penalty total.
func (b ScoreBreakdown) Normalize() ScoreBreakdown {
	b.FinalScore = finite(b.FinalScore)
	b.WeightedAvg = finite(b.WeightedAvg)
	b.Scores = b.Scores.Clamp()
	b.Percentiles = b.Percentiles.Clamp()
	b.Penalties = b.Penalties.Normalize()
	return b
}
