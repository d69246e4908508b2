//go:build integration

package influx

import (
	"context"
	"fmt"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	itOrg    = "fleet"
	itBucket = "telemetry"
	itToken  = "integration-token"
)

// startInflux starts an initialised InfluxDB 2.7 container and returns its
// base URL.
func startInflux(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "admin",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "adminpassword",
			"DOCKER_INFLUXDB_INIT_ORG":         itOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      itBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": itToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestDatasetStatsAgainstInflux(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	url := startInflux(ctx, t)

	c := influxdb2.NewClient(url, itToken)
	defer c.Close()
	w := c.WriteAPIBlocking(itOrg, itBucket)
	now := time.Now()
	for i, id := range []string{"car-1", "car-2", "car-1"} {
		p := influxdb2.NewPoint("segment_stats_drive",
			map[string]string{"car_id": id},
			map[string]interface{}{"soc": 50.0 + float64(i)},
			now.Add(-time.Duration(i)*time.Minute))
		if err := w.WritePoint(ctx, p); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	src := NewWithFallback(Config{Enabled: true, URL: url, Token: itToken, Org: itOrg, Bucket: itBucket}, nil)
	st, err := src.DatasetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.UniqueVehicles != 2 {
		t.Fatalf("expected 2 vehicles, got %d", st.UniqueVehicles)
	}
	if st.TotalLines != 3*LineEstimateFactor {
		t.Fatalf("unexpected line estimate %d", st.TotalLines)
	}
}
