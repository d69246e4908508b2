package fleetstats

import (
	"fmt"

	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/scoring"
)

// Segment estimates derived from the charging count. The dataset keeps no
// per-segment counts.
const (
	DrivePerCharge  = 50
	ParkingPerDrive = 0.6
	FastChargeShare = 0.55
)

// Units reported with each contribution value.
var units = map[model.Factor]string{
	model.FactorEfficiency:      "km/kWh",
	model.FactorTemperature:     "°C",
	model.FactorCellImbalance:   "V",
	model.FactorDrivingHabit:    "pts",
	model.FactorChargingPattern: "pts",
}

// EstimateSections splits a charging count into segment counts.
func EstimateSections(chargingCount int) model.SectionCounts {
	if chargingCount <= 0 {
		return model.SectionCounts{}
	}
	drive := chargingCount * DrivePerCharge
	fast := int(float64(chargingCount) * FastChargeShare)
	return model.SectionCounts{
		Drive:      drive,
		Parking:    int(float64(drive) * ParkingPerDrive),
		FastCharge: fast,
		SlowCharge: chargingCount - fast,
	}
}

// Detail builds the detail payload of rec. Percentiles rank rec against
// every record of fleet.
func Detail(rec Record, fleet []Record) model.VehicleDetail {
	count := 0
	if rec.ChargingCount != nil {
		count = *rec.ChargingCount
	}
	sections := EstimateSections(count)

	scores := rec.FactorScores()
	age := 0.0
	if rec.AgePenalty != nil {
		age = *rec.AgePenalty
	}
	pcts := percentiles(scores, fleet)
	final := 0.0
	if rec.FinalScore != nil {
		final = *rec.FinalScore
	}

	rounded := model.FactorScores{}
	for _, f := range model.Factors {
		rounded.Set(f, scoring.Round(scores.Get(f), 1))
	}
	d := model.VehicleDetail{
		BasicInfo: model.BasicInfo{
			CarID:            rec.CarID,
			CarType:          rec.CarType,
			AgeString:        rec.AgeString,
			ModelYear:        rec.ModelYear,
			ModelMonth:       rec.ModelMonth,
			CollectionPeriod: rec.CollectionPeriod,
			FirstDate:        rec.FirstDate,
			LastDate:         rec.LastDate,
			TotalRows:        sections.Total(),
		},
		SectionCounts: sections,
		BatteryScore: model.ScoreBreakdown{
			FinalScore:  scoring.Round(final, 1),
			Scores:      rounded,
			Penalties:   scoring.Penalties(scores, scoring.Round(age, 1)),
			Percentiles: pcts,
		},
	}
	d.Contributions = contributions(rec, scores, pcts)
	d.Contributions.AgePenalty = model.AgePenalty{
		ModelYear:  rec.ModelYear,
		ModelMonth: rec.ModelMonth,
		AgeYears:   scoring.Round(rec.AgeYears, 2),
		Penalty:    scoring.Round(age, 1),
	}
	return d
}

func percentiles(scores model.FactorScores, fleet []Record) model.FactorScores {
	var out model.FactorScores
	for _, f := range model.Factors {
		var pop []float64
		for _, r := range fleet {
			if v, ok := r.Score(f); ok {
				pop = append(pop, v)
			}
		}
		out.Set(f, scoring.Percentile(pop, scores.Get(f)))
	}
	return out
}

func contributions(rec Record, scores, pcts model.FactorScores) model.Contributions {
	var c model.Contributions
	m := rec.Metrics
	c.Efficiency = contribution(model.FactorEfficiency, roundPtr(m.Efficiency, 2), scores, pcts)
	c.Temperature = contribution(model.FactorTemperature, roundPtr(m.AvgTemperature, 1), scores, pcts)
	c.CellImbalance = contribution(model.FactorCellImbalance, roundPtr(m.CellImbalance, 4), scores, pcts)
	habit := scoring.Round(scores.DrivingHabit, 1)
	c.DrivingHabit = contribution(model.FactorDrivingHabit, &habit, scores, pcts)
	charging := scoring.Round(scores.ChargingPattern, 1)
	c.ChargingPattern = contribution(model.FactorChargingPattern, &charging, scores, pcts)
	return c
}

func contribution(f model.Factor, value *float64, scores, pcts model.FactorScores) model.Contribution {
	s := scores.Get(f)
	c := model.Contribution{
		Value:        value,
		Unit:         units[f],
		Score:        scoring.Round(s, 1),
		Contribution: scoring.Round(scoring.Contribution(f, s), 1),
		Percentile:   pcts.Get(f),
	}
	c.Summary = summary(f, c)
	return c
}

func summary(f model.Factor, c model.Contribution) string {
	tail := fmt.Sprintf("score %.1f (percentile %.0f%%), contributes %.1f pts", c.Score, c.Percentile, c.Contribution)
	switch f {
	case model.FactorEfficiency:
		if c.Value == nil {
			return "no efficiency data"
		}
		return fmt.Sprintf("efficiency %.2f km/kWh, %s", *c.Value, tail)
	case model.FactorTemperature:
		if c.Value == nil {
			return "no temperature data"
		}
		return fmt.Sprintf("mean temperature %.1f°C, %s", *c.Value, tail)
	case model.FactorCellImbalance:
		if c.Value == nil {
			return "no cell balance data"
		}
		return fmt.Sprintf("mean cell spread %.4f V, %s", *c.Value, tail)
	case model.FactorDrivingHabit:
		return "acceleration and braking variability, " + tail
	default:
		return "charging at high state of charge, " + tail
	}
}

func roundPtr(p *float64, n int) *float64 {
	if p == nil {
		return nil
	}
	v := scoring.Round(*p, n)
	return &v
}
