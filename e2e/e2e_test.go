package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleethealth/app"
	"github.com/kilianp07/fleethealth/config"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/view"
	"github.com/kilianp07/fleethealth/infra/dataclient"
	"github.com/kilianp07/fleethealth/internal/eventbus"
)

const dataset = `car_id,car_type,final_score,efficiency,efficiency_score,temperature_score,charging_count,last_date,avg_charging_amount,age_penalty
EV-1,SEDAN,88,6.4,90,85,160,2024-05-01,22,0.5
EV-2,SEDAN,64,5.1,62,70,90,2024-05-02,18,1.5
EV-3,SUV,38,3.0,35,50,40,2024-04-20,25,3
EV-4,VAN,71,,,,,2024-05-03,,
`

// startStack serves the dataset API over a temporary CSV export and returns a
// client pointed at it.
func startStack(t *testing.T) *dataclient.Client {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024", "may.csv"), []byte(dataset), 0o644))

	var cfg config.Config
	cfg.Dataset.Root = dir
	cfg.Logging.Level = "error"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Store.Reload())

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)
	client, err := dataclient.New(dataclient.Config{BaseURL: srv.URL, TimeoutSeconds: 5}, nil)
	require.NoError(t, err)
	return client
}

func waitView(t *testing.T, sub <-chan view.View, pred func(view.View) bool) view.View {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-sub:
			if pred(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("timed out waiting for view")
			return view.View{}
		}
	}
}

func TestDashboardAgainstAPI(t *testing.T) {
	client := startStack(t)

	bus := eventbus.NewTypedBuffered[view.View](64)
	defer bus.Close()
	sub := bus.Subscribe()
	cfg := view.DefaultConfig()
	cfg.RefreshInterval = 0
	ctrl := view.New(client, bus, cfg, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ctrl.Run(ctx) }()

	v := waitView(t, sub, func(v view.View) bool { return v.Loaded && !v.Loading })
	assert.Equal(t, 4, v.Summary.Total)
	assert.Equal(t, []string{"SEDAN", "SUV", "VAN"}, v.CarTypes)
	assert.Equal(t, 1, v.Overview.Dataset.CSVCount)
	require.NotNil(t, v.FleetScore)

	ctrl.Dispatch(view.SetFilters{Grade: "all", CarType: "SEDAN"})
	v = waitView(t, sub, func(v view.View) bool { return v.Filter.CarType == "SEDAN" && !v.Loading })
	assert.Len(t, v.Filtered, 2)
	assert.Equal(t, v.Summary.Excellent+v.Summary.Good+v.Summary.Normal+v.Summary.Bad, v.Summary.Total)

	// the second selection wins regardless of response order
	ctrl.Dispatch(view.SelectVehicle{ID: "EV-3"})
	ctrl.Dispatch(view.SelectVehicle{ID: "EV-1"})
	v = waitView(t, sub, func(v view.View) bool { return v.Detail.Phase == view.DetailShown.String() })
	require.NotNil(t, v.Detail.Payload)
	assert.Equal(t, "EV-1", v.Detail.Payload.BasicInfo.CarID)
	assert.Equal(t, model.SectionCounts{Drive: 8000, Parking: 4800, FastCharge: 88, SlowCharge: 72}, v.Detail.Payload.SectionCounts)
	require.NotNil(t, v.Detail.Charts)

	ctrl.Dispatch(view.DismissDetail{})
	ctrl.Dispatch(view.SelectVehicle{ID: "EV-404"})
	v = waitView(t, sub, func(v view.View) bool { return v.Detail.Phase == view.DetailError.String() })
	assert.Equal(t, "EV-404", v.Detail.VehicleID)
	assert.NotEmpty(t, v.Notice)
}
