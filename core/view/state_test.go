package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleethealth/core/filter"
	"github.com/kilianp07/fleethealth/core/model"
)

func f64(v float64) *float64 { return &v }

func TestDeriveFilterSummaryOrder(t *testing.T) {
	s := NewState()
	s.Vehicles = []model.Vehicle{
		{ID: "A", Grade: model.GradeGood, CarType: "X", FinalScore: 75},
		{ID: "B", Grade: model.GradeBad, CarType: "Y", FinalScore: 40},
	}
	s.Filter = filter.State{Grade: "good", CarType: filter.All}
	v := Derive(s, DefaultLayout())
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, "A", v.Filtered[0].ID)
	assert.Equal(t, model.GradeSummary{Total: 1, Good: 1}, v.Summary.GradeSummary())
	assert.Equal(t, []string{"X", "Y"}, v.CarTypes)
	require.Len(t, v.Charts.Bars.Bars, 1)
	assert.Equal(t, "A", v.Charts.Bars.Bars[0].ID)
	assert.True(t, v.Charts.Radar.NoData, "no fleet score yet")
}

func TestDeriveDonutAngles(t *testing.T) {
	s := NewState()
	grades := map[model.Grade]int{model.GradeExcellent: 2, model.GradeGood: 3, model.GradeNormal: 4, model.GradeBad: 1}
	for g, n := range grades {
		for i := 0; i < n; i++ {
			s.Vehicles = append(s.Vehicles, model.Vehicle{ID: string(g) + string(rune('a'+i)), Grade: g})
		}
	}
	v := Derive(s, DefaultLayout())
	require.Equal(t, 10, v.Summary.Total)
	want := []float64{0.4 * math.Pi, 0.6 * math.Pi, 0.8 * math.Pi, 0.2 * math.Pi}
	require.Len(t, v.Charts.Donut.Slices, 4)
	for i, sl := range v.Charts.Donut.Slices {
		assert.InDelta(t, want[i], sl.Sweep, 1e-9)
	}
}

func TestDeriveEmptyFleetNoData(t *testing.T) {
	v := Derive(NewState(), DefaultLayout())
	assert.Equal(t, 0, v.Summary.Total)
	assert.True(t, v.Charts.Donut.NoData)
	assert.True(t, v.Charts.Bars.NoData)
	assert.NotNil(t, v.Filtered)
	assert.Equal(t, "closed", v.Detail.Phase)
	assert.Nil(t, v.Detail.Charts)
}

func TestDeriveDetailFromPayloadOnly(t *testing.T) {
	d := model.VehicleDetail{
		BasicInfo:     model.BasicInfo{CarID: "A", CarType: "PORTER II"},
		SectionCounts: model.SectionCounts{Drive: 100},
		BatteryScore: model.ScoreBreakdown{
			FinalScore: 80,
			Scores:     model.FactorScores{Efficiency: 90, Temperature: 100, CellImbalance: 80, DrivingHabit: 80, ChargingPattern: 80},
		},
	}
	d.Contributions.Efficiency.Value = f64(5)
	d.Contributions.Temperature.Value = f64(28)
	d.Contributions.AgePenalty.AgeYears = 2

	s := NewState()
	s.Filter = filter.State{Grade: "bad", CarType: "NOPE"}
	s.Detail = Detail{Phase: DetailShown, VehicleID: "A", Payload: &d}
	v := Derive(s, DefaultLayout())

	require.NotNil(t, v.Detail.Charts)
	assert.Empty(t, v.Filtered)
	assert.False(t, v.Detail.Charts.Radar.NoData)
	assert.True(t, v.Detail.HasDrivingData)
	assert.False(t, v.Detail.HasChargingData)
	assert.False(t, v.Detail.SectionsUnknown)
	assert.InDelta(t, 2.5-0.286, v.Detail.EfficiencyRange.Min, 1e-9)
	assert.False(t, v.Detail.Charts.Efficiency.NoData)
	require.NotNil(t, v.Detail.Charts.Temperature.Marker)
	assert.Equal(t, 100.0, v.Detail.Charts.Temperature.Marker.Score)
	assert.True(t, v.Detail.Charts.Trend.NoData)
	assert.Len(t, v.Detail.Charts.Penalties.Rows, 6)
}

func TestDeriveDetailWithoutDrivingData(t *testing.T) {
	d := model.VehicleDetail{SectionCounts: model.SectionCounts{FastCharge: 3}}
	s := NewState()
	s.Detail = Detail{Phase: DetailShown, VehicleID: "A", Payload: &d}
	v := Derive(s, DefaultLayout())
	assert.True(t, v.Detail.Charts.Efficiency.NoData)
	assert.True(t, v.Detail.Charts.Temperature.NoData)
	assert.True(t, v.Detail.HasChargingData)
}
