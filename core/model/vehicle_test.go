package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestGradeFor(t *testing.T) {
	cases := map[float64]Grade{
		98:    GradeExcellent,
		85:    GradeExcellent,
		84.99: GradeGood,
		70:    GradeGood,
		55:    GradeNormal,
		54.9:  GradeBad,
		0:     GradeBad,
	}
	for score, want := range cases {
		if got := GradeFor(score); got != want {
			t.Fatalf("GradeFor(%v)=%s want %s", score, got, want)
		}
	}
}

func TestVehicleNormalizeDerivesGrade(t *testing.T) {
	nan := math.NaN()
	v := Vehicle{ID: " A1 ", CarType: " EV6", FinalScore: 72, Grade: "unknown", Efficiency: &nan}.Normalize()
	if v.ID != "A1" || v.CarType != "EV6" {
		t.Fatalf("strings not trimmed: %+v", v)
	}
	if v.Grade != GradeGood {
		t.Fatalf("expected derived grade good got %s", v.Grade)
	}
	if v.HasEfficiency() {
		t.Fatalf("NaN efficiency should be dropped")
	}
}

func TestNormalizeVehiclesDropsMissingID(t *testing.T) {
	out := NormalizeVehicles([]Vehicle{{ID: ""}, {ID: "B", Grade: GradeBad}})
	if len(out) != 1 || out[0].ID != "B" {
		t.Fatalf("unexpected %+v", out)
	}
	if NormalizeVehicles(nil) == nil {
		t.Fatalf("expected non-nil slice")
	}
}

func TestVehicleDecodeNullFields(t *testing.T) {
	var v Vehicle
	raw := `{"car_id":"X","car_type":null,"final_score":90,"grade":"excellent","efficiency":null,"last_charge":null}`
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	v = v.Normalize()
	if v.CarType != "" || v.Efficiency != nil || v.LastCharge != nil {
		t.Fatalf("nulls should decode to zero values: %+v", v)
	}
}

func TestPenaltiesNormalizeRecomputesTotal(t *testing.T) {
	p := Penalties{Age: 2.5, Total: 999}
	p.Efficiency = 3
	p.Temperature = -1
	p.CellImbalance = math.Inf(1)
	p.DrivingHabit = 1.5
	p = p.Normalize()
	if p.Temperature != 0 || p.CellImbalance != 0 {
		t.Fatalf("invalid penalties not dropped: %+v", p)
	}
	if p.Total != 7 {
		t.Fatalf("expected total 7 got %v", p.Total)
	}
}

func TestPenaltiesJSONShape(t *testing.T) {
	var p Penalties
	p.Efficiency = 1
	p.Age = 2
	p.Total = 3
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != 7 || m["efficiency"] != 1 || m["age"] != 2 || m["total"] != 3 {
		t.Fatalf("unexpected shape %s", b)
	}
}

func TestFactorScoresClamp(t *testing.T) {
	s := FactorScores{Efficiency: 120, Temperature: -5, CellImbalance: math.NaN(), DrivingHabit: 50}
	c := s.Clamp()
	want := []float64{100, 0, 0, 50, 0}
	for i, v := range c.Values() {
		if v != want[i] {
			t.Fatalf("axis %s: got %v want %v", Factors[i], v, want[i])
		}
	}
}

func TestSectionCountsFlags(t *testing.T) {
	var c SectionCounts
	if !c.Unknown() || c.HasDrivingData() || c.HasChargingData() {
		t.Fatalf("zero counts should be unknown")
	}
	c.Parking = 3
	if c.Unknown() || !c.HasDrivingData() || c.HasChargingData() {
		t.Fatalf("parking only: %+v", c)
	}
	c.SlowCharge = 1
	if !c.HasChargingData() || c.Total() != 4 {
		t.Fatalf("slow charge: %+v", c)
	}
}

func TestStatsNormalize(t *testing.T) {
	s := Stats{BatteryScore: &ScoreBreakdown{Penalties: Penalties{Age: 1}}}.Normalize()
	if s.VehicleTypes == nil || s.Performance.Vehicles == nil {
		t.Fatalf("lists should be non-nil")
	}
	if s.BatteryScore.Penalties.Total != 1 {
		t.Fatalf("total not recomputed")
	}
}
