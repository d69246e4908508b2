package fleetstats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleethealth/core/aggregate"
	"github.com/kilianp07/fleethealth/core/filter"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/scoring"
)

// PlentyChargingCount is the charging count above which a vehicle with an
// efficiency reading has plenty of data.
const PlentyChargingCount = 100

// ReliableSampleSize is the number of final scores above which the fleet
// score is reported as highly reliable.
const ReliableSampleSize = 100

// Reliability labels.
const (
	ReliabilityHigh   = "high"
	ReliabilityNormal = "normal"
)

// VehicleTypes counts records per car type, most common first. Ties keep
// the order in which the types were first seen.
func VehicleTypes(recs []Record) []model.VehicleTypeShare {
	counts := map[string]int{}
	var order []string
	total := 0
	for _, r := range recs {
		if r.CarType == "" {
			continue
		}
		if _, ok := counts[r.CarType]; !ok {
			order = append(order, r.CarType)
		}
		counts[r.CarType]++
		total++
	}
	out := make([]model.VehicleTypeShare, 0, len(order))
	for _, t := range order {
		out = append(out, model.VehicleTypeShare{
			CarType:    t,
			Count:      counts[t],
			Percentage: scoring.Round(float64(counts[t])/float64(total)*100, 1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CompletenessOf buckets records by data availability: no efficiency is
// empty, efficiency with more than PlentyChargingCount charges is plenty.
func CompletenessOf(recs []Record) model.Completeness {
	var c model.Completeness
	for _, r := range recs {
		switch {
		case r.Metrics.Efficiency == nil:
			c.Empty++
		case r.ChargingCount != nil && *r.ChargingCount > PlentyChargingCount:
			c.Plenty++
		default:
			c.Normal++
		}
	}
	if total := c.Plenty + c.Normal + c.Empty; total > 0 {
		c.PlentyPct = pct(c.Plenty, total)
		c.NormalPct = pct(c.Normal, total)
		c.EmptyPct = pct(c.Empty, total)
	}
	return c
}

func pct(n, total int) float64 { return scoring.Round(float64(n)/float64(total)*100, 1) }

// PerformanceOf lists scored vehicles with their grade and the fleet
// aggregates. Unscored records are skipped.
func PerformanceOf(recs []Record, now time.Time) model.Performance {
	vehicles := make([]model.Vehicle, 0, len(recs))
	for _, r := range recs {
		if r.FinalScore == nil || r.CarID == "" {
			continue
		}
		v := model.Vehicle{
			ID:               r.CarID,
			CarType:          r.CarType,
			FinalScore:       scoring.Round(*r.FinalScore, 1),
			Grade:            model.GradeFor(*r.FinalScore),
			AgeString:        r.AgeString,
			CollectionPeriod: r.CollectionPeriod,
			LastCharge:       lastCharge(r, now),
		}
		if e := r.Metrics.Efficiency; e != nil {
			rounded := scoring.Round(*e, 2)
			v.Efficiency = &rounded
		}
		vehicles = append(vehicles, v)
	}
	sum := aggregate.Summarize(vehicles)
	st := sum.Stats()
	st.AvgEfficiency = scoring.Round(st.AvgEfficiency, 1)
	st.AvgBatteryHealth = scoring.Round(st.AvgBatteryHealth, 1)
	return model.Performance{Vehicles: vehicles, Summary: sum.GradeSummary(), Stats: st}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func lastCharge(r Record, now time.Time) *string {
	var parts []string
	if t, ok := parseDate(r.LastDate); ok {
		parts = append(parts, fmt.Sprintf("%d days ago", int(now.Sub(t).Hours()/24)))
	}
	if r.AvgChargingKWh != nil {
		parts = append(parts, fmt.Sprintf("%.2f kWh", *r.AvgChargingKWh))
	}
	if len(parts) == 0 {
		return nil
	}
	s := strings.Join(parts, " / ")
	return &s
}

// Scope keeps the records matching q. Grades are derived from the final
// score; unscored records never match a grade.
func Scope(recs []Record, q model.StatsQuery) []Record {
	if q.IsZero() {
		return recs
	}
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if q.CarType != "" && q.CarType != filter.All && r.CarType != q.CarType {
			continue
		}
		if q.Grade != "" && q.Grade != filter.All {
			g, ok := r.Grade()
			if !ok || string(g) != q.Grade {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// BatteryScore averages the scores of the records in scope. It returns nil
// when the scope is empty.
func BatteryScore(recs []Record, q model.StatsQuery) *model.ScoreBreakdown {
	recs = Scope(recs, q)
	if len(recs) == 0 {
		return nil
	}
	per := map[model.Factor][]float64{}
	var finals, ages []float64
	for _, r := range recs {
		for _, f := range model.Factors {
			if v, ok := r.Score(f); ok {
				per[f] = append(per[f], v)
			}
		}
		if r.FinalScore != nil {
			finals = append(finals, *r.FinalScore)
		}
		if r.AgePenalty != nil {
			ages = append(ages, *r.AgePenalty)
		}
	}

	var means, pcts model.FactorScores
	for _, f := range model.Factors {
		m := mean(per[f])
		means.Set(f, scoring.Round(m, 1))
		pcts.Set(f, scoring.Percentile(per[f], m))
	}
	b := &model.ScoreBreakdown{
		FinalScore:  scoring.Round(mean(finals), 1),
		WeightedAvg: scoring.Round(scoring.WeightedAverage(means), 1),
		Reliability: ReliabilityNormal,
		Scores:      means,
		Penalties:   scoring.Penalties(means, scoring.Round(mean(ages), 1)),
		Percentiles: pcts,
	}
	if len(finals) > ReliableSampleSize {
		b.Reliability = ReliabilityHigh
	}
	return b
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
