package model

import "strings"

// Vehicle is one row of the fleet snapshot. Values are never mutated after the
// snapshot has been normalized; a new snapshot replaces the whole set.
type Vehicle struct {
	ID               string   `json:"car_id"`
	CarType          string   `json:"car_type"`
	FinalScore       float64  `json:"final_score"`
	Grade            Grade    `json:"grade"`
	Efficiency       *float64 `json:"efficiency"` // km/kWh, nil when never measured
	LastCharge       *string  `json:"last_charge"`
	AgeString        string   `json:"age_string"`
	CollectionPeriod string   `json:"collection_period"`
}

// Normalize fills defaults for fields the data source left empty or invalid.
// A grade outside the four known tiers is derived from the final score so
// that per-grade counts always add up to the vehicle count.
func (v Vehicle) Normalize() Vehicle {
	v.ID = strings.TrimSpace(v.ID)
	v.CarType = strings.TrimSpace(v.CarType)
	v.FinalScore = finite(v.FinalScore)
	if !v.Grade.Valid() {
		v.Grade = GradeFor(v.FinalScore)
	}
	if v.Efficiency != nil && !isFinite(*v.Efficiency) {
		v.Efficiency = nil
	}
	return v
}

// HasEfficiency reports whether an efficiency measurement is present.
func (v Vehicle) HasEfficiency() bool { return v.Efficiency != nil }

// NormalizeVehicles returns a normalized copy of vs. Rows without an ID are
// dropped.
func NormalizeVehicles(vs []Vehicle) []Vehicle {
	out := make([]Vehicle, 0, len(vs))
	for _, v := range vs {
		n := v.Normalize()
		if n.ID == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}
