package model

// BasicInfo identifies a vehicle in the detail view.
type BasicInfo struct {
	CarID            string `json:"car_id"`
	CarType          string `json:"car_type"`
	AgeString        string `json:"age_string"`
	ModelYear        string `json:"model_year"`
	ModelMonth       string `json:"model_month"`
	CollectionPeriod string `json:"collection_period"`
	FirstDate        string `json:"first_date"`
	LastDate         string `json:"last_date"`
	TotalRows        int    `json:"total_rows"`
}

// SectionCounts holds the number of recorded segments per kind.
type SectionCounts struct {
	Drive      int `json:"drive"`
	Parking    int `json:"parking"`
	FastCharge int `json:"fast_charge"`
	SlowCharge int `json:"slow_charge"`
}

// Unknown reports whether no segment of any kind was recorded.
func (c SectionCounts) Unknown() bool {
	return c.Drive == 0 && c.Parking == 0 && c.FastCharge == 0 && c.SlowCharge == 0
}

// HasDrivingData reports whether drive or parking segments exist.
func (c SectionCounts) HasDrivingData() bool { return c.Drive > 0 || c.Parking > 0 }

// HasChargingData reports whether charging segments exist.
func (c SectionCounts) HasChargingData() bool { return c.FastCharge > 0 || c.SlowCharge > 0 }

// Total adds all segment counts.
func (c SectionCounts) Total() int { return c.Drive + c.Parking + c.FastCharge + c.SlowCharge }

// Contribution explains how one factor feeds into the final score.
type Contribution struct {
	Value        *float64 `json:"value"` // raw measurement, nil when missing
	Unit         string   `json:"unit"`
	Score        float64  `json:"score"`
	Change       float64  `json:"change"`
	Contribution float64  `json:"contribution"`
	Percentile   float64  `json:"percentile"`
	Summary      string   `json:"summary"`
}

// AgePenalty describes the deduction applied for vehicle age.
type AgePenalty struct {
	ModelYear  string  `json:"model_year"`
	ModelMonth string  `json:"model_month"`
	AgeYears   float64 `json:"age_years"`
	Penalty    float64 `json:"penalty"`
}

// Contributions groups the per-factor explanations.
type Contributions struct {
	Efficiency      Contribution `json:"efficiency"`
	Temperature     Contribution `json:"temperature"`
	CellImbalance   Contribution `json:"cell_imbalance"`
	DrivingHabit    Contribution `json:"driving_habit"`
	ChargingPattern Contribution `json:"charging_pattern"`
	AgePenalty      AgePenalty   `json:"age_penalty"`
}

// Get returns the contribution for f.
func (c Contributions) Get(f Factor) Contribution {
	switch f {
	case FactorEfficiency:
		return c.Efficiency
	case FactorTemperature:
		return c.Temperature
	case FactorCellImbalance:
		return c.CellImbalance
	case FactorDrivingHabit:
		return c.DrivingHabit
	case FactorChargingPattern:
		return c.ChargingPattern
	}
	return Contribution{}
}

// VehicleDetail is the payload of the per-vehicle detail endpoint.
type VehicleDetail struct {
	BasicInfo     BasicInfo      `json:"basic_info"`
	SectionCounts SectionCounts  `json:"section_counts"`
	BatteryScore  ScoreBreakdown `json:"battery_score"`
	Contributions Contributions  `json:"contribution_details"`
}

// Normalize repairs the nested score breakdown and drops negative counts.
func (d VehicleDetail) Normalize() VehicleDetail {
	d.BatteryScore = d.BatteryScore.Normalize()
	d.SectionCounts = SectionCounts{
		Drive:      max(0, d.SectionCounts.Drive),
		Parking:    max(0, d.SectionCounts.Parking),
		FastCharge: max(0, d.SectionCounts.FastCharge),
		SlowCharge: max(0, d.SectionCounts.SlowCharge),
	}
	return d
}
