package chart

import (
	"math"

	"github.com/kilianp07/fleethealth/core/model"
)

// LowPercentile flags factors ranking in the bottom of the fleet.
const LowPercentile = 30.0

// PercentileBar is a horizontal progress bar for one factor.
type PercentileBar struct {
	Factor     model.Factor `json:"factor"`
	Label      string       `json:"label"`
	Score      float64      `json:"score"`
	Percentile float64      `json:"percentile"`
	Fraction   float64      `json:"fraction"`
	Low        bool         `json:"low"`
}

// PercentileBars returns one bar per factor in axis order.
func PercentileBars(scores, percentiles model.FactorScores) []PercentileBar {
	out := make([]PercentileBar, 0, len(model.Factors))
	for _, f := range model.Factors {
		pct := clamp(percentiles.Get(f), 0, 100)
		out = append(out, PercentileBar{
			Factor:     f,
			Label:      FactorLabel(f),
			Score:      clamp(scores.Get(f), 0, 100),
			Percentile: pct,
			Fraction:   pct / 100,
			Low:        pct < LowPercentile,
		})
	}
	return out
}

// PenaltyRow is one line of the deduction table.
type PenaltyRow struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PenaltyTable lists deductions in fixed order with their total.
type PenaltyTable struct {
	Rows  []PenaltyRow `json:"rows"`
	Total float64      `json:"total"`
}

// PenaltyRows orders the five factor penalties followed by the age penalty.
// The total is recomputed from the rows.
func PenaltyRows(p model.Penalties) PenaltyTable {
	p = p.Normalize()
	t := PenaltyTable{Rows: make([]PenaltyRow, 0, len(model.Factors)+1)}
	for _, f := range model.Factors {
		t.Rows = append(t.Rows, PenaltyRow{Key: f.Key(), Label: FactorLabel(f), Value: round1(p.Get(f))})
	}
	t.Rows = append(t.Rows, PenaltyRow{Key: "age", Label: "Age", Value: round1(p.Age)})
	t.Total = round1(p.Total)
	return t
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
