package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/fleethealth/core/fleetstats"
	"github.com/kilianp07/fleethealth/core/model"
)

var scoreColumns = map[model.Factor]string{
	model.FactorEfficiency:      "efficiency_score",
	model.FactorTemperature:     "temperature_score",
	model.FactorCellImbalance:   "cell_imbalance_score",
	model.FactorDrivingHabit:    "driving_habit_score",
	model.FactorChargingPattern: "charging_pattern_score",
}

// RowID returns the vehicle id of row: car_id, else client_id.
func RowID(row map[string]string) string {
	if id := field(row, "car_id"); id != "" {
		return id
	}
	return field(row, "client_id")
}

// ParseRow converts one CSV row into a Record. Unparseable numbers are
// treated as missing. It returns false for rows without a vehicle id.
func ParseRow(row map[string]string) (fleetstats.Record, bool) {
	id := RowID(row)
	if id == "" {
		return fleetstats.Record{}, false
	}
	r := fleetstats.Record{
		CarID:            id,
		CarType:          field(row, "car_type"),
		AgeString:        field(row, "age_string"),
		CollectionPeriod: field(row, "collection_period"),
		FirstDate:        field(row, "first_date"),
		LastDate:         field(row, "last_date"),
		ModelYear:        field(row, "model_year"),
		ModelMonth:       field(row, "model_month"),
		FinalScore:       number(row, "final_score"),
		AgePenalty:       number(row, "age_penalty"),
		AvgChargingKWh:   number(row, "avg_charging_amount"),
		Scores:           map[model.Factor]float64{},
	}
	if age := number(row, "age_years"); age != nil {
		r.AgeYears = *age
	}
	for f, col := range scoreColumns {
		if v := number(row, col); v != nil {
			r.Scores[f] = *v
		}
	}
	if c := number(row, "charging_count"); c != nil {
		n := int(*c)
		r.ChargingCount = &n
	}
	r.Metrics.Efficiency = number(row, "efficiency")
	r.Metrics.AvgTemperature = number(row, "avg_temperature")
	r.Metrics.CellImbalance = number(row, "cell_imbalance")
	r.Metrics.HighSocRatio = number(row, "high_soc_ratio")
	r.Metrics.Driving.AccelStd = number(row, "accel_std")
	r.Metrics.Driving.BrakeStd = number(row, "brake_std")
	r.Metrics.Driving.DailyDistance = number(row, "daily_distance")
	r.Metrics.Driving.CumulativeDistance = number(row, "cumulative_distance")
	return r.Complete(), true
}

func field(row map[string]string, key string) string {
	return strings.TrimSpace(row[key])
}

func number(row map[string]string, key string) *float64 {
	s := field(row, key)
	if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "null") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
