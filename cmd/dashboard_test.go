package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleethealth/core/fault"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/view"
)

type staticSource struct {
	stats    model.Stats
	statsErr error
}

func (s staticSource) Stats(_ context.Context, q model.StatsQuery) (model.Stats, error) {
	if s.statsErr != nil {
		return model.Stats{}, s.statsErr
	}
	st := s.stats
	if !q.IsZero() {
		st.BatteryScore = &model.ScoreBreakdown{FinalScore: 40, Reliability: "normal"}
	}
	return st, nil
}

func (s staticSource) VehicleDetail(_ context.Context, id string) (model.VehicleDetail, error) {
	if id != "A" {
		return model.VehicleDetail{}, fmt.Errorf("detail: %w", &fault.StatusError{Code: 404, URL: "/api/vehicle-detail/" + id})
	}
	return model.VehicleDetail{BasicInfo: model.BasicInfo{CarID: "A", CarType: "X"}}, nil
}

func fleet() staticSource {
	return staticSource{stats: model.Stats{
		BatteryScore: &model.ScoreBreakdown{FinalScore: 57.5, Reliability: "normal"},
		Performance: model.Performance{Vehicles: []model.Vehicle{
			{ID: "A", CarType: "X", FinalScore: 75, Grade: model.GradeGood},
			{ID: "B", CarType: "Y", FinalScore: 40, Grade: model.GradeBad},
			{ID: "AB", CarType: "Y", FinalScore: 90, Grade: model.GradeExcellent},
		}},
	}}
}

func settleFor(t *testing.T, src view.Source, req request) (view.View, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cfg := view.DefaultConfig()
	cfg.RefreshInterval = 0
	return settle(ctx, src, cfg, nil, nil, req)
}

func TestSettleUnfiltered(t *testing.T) {
	v, err := settleFor(t, fleet(), request{Grade: "all", CarType: "all"})
	require.NoError(t, err)
	assert.Len(t, v.Filtered, 3)
	require.NotNil(t, v.FleetScore)
	assert.Equal(t, 57.5, v.FleetScore.FinalScore)
}

func TestSettleAppliesFilters(t *testing.T) {
	v, err := settleFor(t, fleet(), request{Grade: "bad", CarType: "Y"})
	require.NoError(t, err)
	require.Len(t, v.Filtered, 1)
	assert.Equal(t, "B", v.Filtered[0].ID)
	require.NotNil(t, v.FleetScore)
	assert.Equal(t, 40.0, v.FleetScore.FinalScore)
}

func TestSettleSearch(t *testing.T) {
	v, err := settleFor(t, fleet(), request{Search: "a"})
	require.NoError(t, err)
	assert.Len(t, v.Filtered, 2)
}

func TestSettleDetail(t *testing.T) {
	v, err := settleFor(t, fleet(), request{Vehicle: "A"})
	require.NoError(t, err)
	assert.Equal(t, view.DetailShown.String(), v.Detail.Phase)
	require.NotNil(t, v.Detail.Payload)

	var buf bytes.Buffer
	renderDetail(&buf, v.Detail)
	assert.Contains(t, buf.String(), "Vehicle A (X)")
	assert.Contains(t, buf.String(), "Penalties")
}

func TestSettleDetailNotFound(t *testing.T) {
	_, err := settleFor(t, fleet(), request{Vehicle: "Z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vehicle Z")
}

func TestSettleInvalidGrade(t *testing.T) {
	_, err := settleFor(t, fleet(), request{Grade: "superb"})
	require.Error(t, err)
}

func TestSettleSnapshotFailure(t *testing.T) {
	_, err := settleFor(t, staticSource{statsErr: fault.Network("stats", errors.New("refused"))}, request{})
	require.Error(t, err)
}

func TestRenderOverview(t *testing.T) {
	v, err := settleFor(t, fleet(), request{})
	require.NoError(t, err)
	var buf bytes.Buffer
	renderOverview(&buf, v)
	lines := strings.Split(buf.String(), "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "A") || strings.HasPrefix(l, "B") {
			rows = append(rows, strings.Fields(l)[0])
		}
	}
	assert.Contains(t, buf.String(), "vehicles 3")
	assert.Equal(t, []string{"AB", "A", "B"}, rows)
}

func TestEncode(t *testing.T) {
	payload := map[string]any{"car_id": "A", "score": 75.5}
	var js, ym bytes.Buffer
	require.NoError(t, encode(&js, "json", payload))
	require.NoError(t, encode(&ym, "yaml", payload))
	assert.Contains(t, js.String(), `"car_id": "A"`)
	assert.Contains(t, ym.String(), "car_id: A")
	assert.Error(t, encode(&js, "xml", payload))
}
