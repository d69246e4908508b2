// Package fleetstats derives the fleet statistics and vehicle detail payloads
// from per-vehicle score records.
package fleetstats

import (
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/scoring"
)

// Record is the scored summary of one vehicle as found in the dataset. Any
// numeric field may be missing.
type Record struct {
	CarID            string
	CarType          string
	AgeString        string
	CollectionPeriod string
	FirstDate        string
	LastDate         string
	ModelYear        string
	ModelMonth       string
	AgeYears         float64

	FinalScore *float64
	Scores     map[model.Factor]float64
	AgePenalty *float64

	Metrics        scoring.Metrics
	AvgChargingKWh *float64
	ChargingCount  *int
}

// Score returns the score of f and whether it is present.
func (r Record) Score(f model.Factor) (float64, bool) {
	v, ok := r.Scores[f]
	return v, ok
}

// ScoreOrZero returns the score of f, 0 when missing.
func (r Record) ScoreOrZero(f model.Factor) float64 {
	return r.Scores[f]
}

// FactorScores returns the five scores with missing ones as 0.
func (r Record) FactorScores() model.FactorScores {
	var s model.FactorScores
	for _, f := range model.Factors {
		s.Set(f, r.Scores[f])
	}
	return s
}

func (r Record) hasRawMetrics() bool {
	m := r.Metrics
	return m.Efficiency != nil || m.AvgTemperature != nil || m.CellImbalance != nil ||
		m.HighSocRatio != nil || m.Driving.AccelStd != nil || m.Driving.BrakeStd != nil ||
		m.Driving.DailyDistance != nil || m.Driving.CumulativeDistance != nil
}

// Complete derives missing component scores, the age penalty and the final
// score from the raw metrics. Scores already present are kept.
func (r Record) Complete() Record {
	if len(r.Scores) == len(model.Factors) && r.FinalScore != nil && r.AgePenalty != nil {
		return r
	}
	if !r.hasRawMetrics() && len(r.Scores) == 0 {
		if r.FinalScore != nil && r.AgePenalty == nil {
			p := scoring.AgePenalty(r.AgeYears)
			r.AgePenalty = &p
		}
		return r
	}
	res := scoring.Final(r.Metrics, scoring.ClassOf(r.CarType), r.AgeYears)
	scores := make(map[model.Factor]float64, len(model.Factors))
	for f, v := range r.Scores {
		scores[f] = v
	}
	derived := map[model.Factor]bool{
		model.FactorEfficiency:      r.Metrics.Efficiency != nil,
		model.FactorTemperature:     r.Metrics.AvgTemperature != nil,
		model.FactorCellImbalance:   r.Metrics.CellImbalance != nil,
		model.FactorDrivingHabit:    true,
		model.FactorChargingPattern: true,
	}
	for _, f := range model.Factors {
		if _, ok := scores[f]; !ok && derived[f] {
			scores[f] = scoring.Round(res.Scores.Get(f), 2)
		}
	}
	r.Scores = scores
	if r.AgePenalty == nil {
		p := res.AgePenalty
		r.AgePenalty = &p
	}
	if r.FinalScore == nil {
		final := scoring.Round(res.FinalScore, 2)
		if len(r.Scores) == len(model.Factors) {
			final = scoring.Round(scoring.Combine(scoring.WeightedAverage(r.FactorScores()), *r.AgePenalty), 2)
		}
		r.FinalScore = &final
	}
	return r
}

// Grade returns the grade of the final score and false when the record is
// unscored.
func (r Record) Grade() (model.Grade, bool) {
	if r.FinalScore == nil {
		return "", false
	}
	return model.GradeFor(*r.FinalScore), true
}

// Snapshot is one load of the dataset.
type Snapshot struct {
	Records    []Record
	Files      int
	TotalBytes int64
}

// Find returns the record of id.
func (s Snapshot) Find(id string) (Record, bool) {
	for _, r := range s.Records {
		if r.CarID == id {
			return r, true
		}
	}
	return Record{}, false
}
