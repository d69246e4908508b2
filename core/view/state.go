package view

import (
	"github.com/kilianp07/fleethealth/core/aggregate"
	"github.com/kilianp07/fleethealth/core/chart"
	"github.com/kilianp07/fleethealth/core/filter"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/scoring"
)

// Phase is the detail view lifecycle.
type Phase int

const (
	DetailClosed Phase = iota
	DetailLoading
	DetailShown
	DetailError
)

func (p Phase) String() string {
	switch p {
	case DetailClosed:
		return "closed"
	case DetailLoading:
		return "loading"
	case DetailShown:
		return "shown"
	case DetailError:
		return "error"
	}
	return "unknown"
}

// Layout holds the drawing boxes of every chart and the detail content
// bounds used to tell backdrop clicks apart.
type Layout struct {
	Radar         chart.Box  `json:"radar"`
	Donut         chart.Box  `json:"donut"`
	Bars          chart.Box  `json:"bars"`
	DetailRadar   chart.Box  `json:"detail_radar"`
	Curve         chart.Box  `json:"curve"`
	Trend         chart.Box  `json:"trend"`
	DetailContent chart.Rect `json:"detail_content"`
}

// DefaultLayout mirrors the canvas sizes of the dashboard.
func DefaultLayout() Layout {
	return Layout{
		Radar:         chart.Box{Width: 400, Height: 400},
		Donut:         chart.Box{Width: 300, Height: 300},
		Bars:          chart.Box{Width: 800, Height: 300},
		DetailRadar:   chart.Box{Width: 400, Height: 400},
		Curve:         chart.Box{Width: 1200, Height: 450},
		Trend:         chart.Box{Width: 400, Height: 200},
		DetailContent: chart.Rect{X: 160, Y: 40, Width: 960, Height: 720},
	}
}

// Overview is the fleet wide context passed through from the snapshot.
type Overview struct {
	VehicleTypes []model.VehicleTypeShare `json:"vehicle_types"`
	Completeness model.Completeness       `json:"completeness"`
	Dataset      model.DatasetStats       `json:"dataset"`
}

// Detail is the state of the detail view. Payload is only set while shown.
type Detail struct {
	Phase     Phase
	VehicleID string
	Payload   *model.VehicleDetail
	Err       string
}

// State is owned by the Controller's event loop and never shared.
type State struct {
	Vehicles   []model.Vehicle
	Overview   Overview
	Filter     filter.State
	FleetScore *model.ScoreBreakdown
	Detail     Detail
	Loaded     bool

	lastScoreQuery model.StatsQuery
	snapshotToken  uint64
	scoreToken     uint64
	detailToken    uint64
	snapshotBusy   bool
	scoreBusy      bool
}

// NewState returns the state before the first snapshot.
func NewState() State {
	return State{Vehicles: []model.Vehicle{}, Filter: filter.Default()}
}

// FleetCharts is the geometry of the fleet overview.
type FleetCharts struct {
	Radar       chart.RadarChart      `json:"radar"`
	Donut       chart.DonutChart      `json:"donut"`
	Bars        chart.BarChart        `json:"bars"`
	Penalties   chart.PenaltyTable    `json:"penalties"`
	Percentiles []chart.PercentileBar `json:"percentiles"`
}

// DetailCharts is the geometry of the detail view, derived from the detail
// payload alone.
type DetailCharts struct {
	Radar       chart.RadarChart      `json:"radar"`
	Penalties   chart.PenaltyTable    `json:"penalties"`
	Percentiles []chart.PercentileBar `json:"percentiles"`
	Efficiency  chart.Curve           `json:"efficiency"`
	Temperature chart.Curve           `json:"temperature"`
	Trend       chart.TrendChart      `json:"trend"`
}

// DetailView is the published form of Detail.
type DetailView struct {
	Phase           string               `json:"phase"`
	VehicleID       string               `json:"vehicle_id,omitempty"`
	Payload         *model.VehicleDetail `json:"payload,omitempty"`
	Error           string               `json:"error,omitempty"`
	HasDrivingData  bool                 `json:"has_driving_data"`
	HasChargingData bool                 `json:"has_charging_data"`
	SectionsUnknown bool                 `json:"sections_unknown"`
	EfficiencyRange scoring.Range        `json:"efficiency_range"`
	Charts          *DetailCharts        `json:"charts,omitempty"`
}

// View is the snapshot handed to the presentation layer after every state
// change. Notice carries a one-shot user visible message.
type View struct {
	Seq        uint64                `json:"seq"`
	Loaded     bool                  `json:"loaded"`
	Loading    bool                  `json:"loading"`
	Filter     filter.State          `json:"filter"`
	CarTypes   []string              `json:"car_types"`
	Filtered   []model.Vehicle       `json:"filtered"`
	Summary    aggregate.Summary     `json:"summary"`
	Overview   Overview              `json:"overview"`
	FleetScore *model.ScoreBreakdown `json:"fleet_score,omitempty"`
	Charts     FleetCharts           `json:"charts"`
	Detail     DetailView            `json:"detail"`
	Notice     string                `json:"notice,omitempty"`
}

// Derive computes the view for s: filter, then summary, then chart geometry.
func Derive(s State, l Layout) View {
	filtered := filter.Apply(s.Vehicles, s.Filter)
	summary := aggregate.Summarize(filtered)
	v := View{
		Loaded:     s.Loaded,
		Loading:    s.snapshotBusy || s.scoreBusy,
		Filter:     s.Filter,
		CarTypes:   filter.CarTypes(s.Vehicles),
		Filtered:   filtered,
		Summary:    summary,
		Overview:   s.Overview,
		FleetScore: s.FleetScore,
		Charts:     fleetCharts(l, filtered, summary, s.FleetScore),
		Detail:     deriveDetail(s.Detail, l),
	}
	return v
}

func fleetCharts(l Layout, filtered []model.Vehicle, summary aggregate.Summary, score *model.ScoreBreakdown) FleetCharts {
	fc := FleetCharts{
		Donut:       chart.Donut(l.Donut, chart.GradeCategories(summary.GradeCounts())),
		Bars:        chart.Bars(l.Bars, chart.SortByScore(filtered)),
		Percentiles: []chart.PercentileBar{},
	}
	if score == nil {
		fc.Radar = chart.Radar(l.Radar, nil)
		fc.Penalties = chart.PenaltyRows(model.Penalties{})
		return fc
	}
	fc.Radar = chart.Radar(l.Radar, &score.Scores)
	fc.Penalties = chart.PenaltyRows(score.Penalties)
	fc.Percentiles = chart.PercentileBars(score.Scores, score.Percentiles)
	return fc
}

func deriveDetail(d Detail, l Layout) DetailView {
	dv := DetailView{Phase: d.Phase.String(), VehicleID: d.VehicleID, Error: d.Err}
	if d.Phase != DetailShown || d.Payload == nil {
		return dv
	}
	p := d.Payload
	dv.Payload = p
	dv.HasDrivingData = p.SectionCounts.HasDrivingData()
	dv.HasChargingData = p.SectionCounts.HasChargingData()
	dv.SectionsUnknown = p.SectionCounts.Unknown()

	age := p.Contributions.AgePenalty.AgeYears
	dv.EfficiencyRange = scoring.EfficiencyRange(scoring.ClassOf(p.BasicInfo.CarType), age)

	score := p.BatteryScore
	dc := &DetailCharts{
		Radar:       chart.Radar(l.DetailRadar, &score.Scores),
		Penalties:   chart.PenaltyRows(score.Penalties),
		Percentiles: chart.PercentileBars(score.Scores, score.Percentiles),
		Trend:       chart.Trend(l.Trend),
	}
	if dv.HasDrivingData {
		dc.Efficiency = chart.EfficiencyCurve(l.Curve, dv.EfficiencyRange, p.Contributions.Efficiency.Value)
		dc.Temperature = chart.TemperatureCurve(l.Curve, p.Contributions.Temperature.Value)
	} else {
		dc.Efficiency = chart.Curve{NoData: true}
		dc.Temperature = chart.Curve{NoData: true}
	}
	dv.Charts = dc
	return dv
}
