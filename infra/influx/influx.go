// Package influx reports raw telemetry volume from InfluxDB.
package influx

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/kilianp07/fleethealth/core/fleetstats"
	"github.com/kilianp07/fleethealth/core/logger"
	"github.com/kilianp07/fleethealth/core/model"
)

// LineEstimateFactor scales the 30 day line count to the whole history.
const LineEstimateFactor = 24

// Config holds the InfluxDB connection settings.
type Config struct {
	Enabled         bool   `json:"enabled"`
	URL             string `json:"url"`
	Token           string `json:"token"`
	Org             string `json:"org"`
	Bucket          string `json:"bucket"`
	Measurement     string `json:"measurement"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Measurement == "" {
		c.Measurement = "segment_stats_drive"
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 300
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks mandatory fields when enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx url, org and bucket are required")
	}
	return nil
}

// Source queries dataset statistics and caches them for CacheTTLSeconds.
type Source struct {
	cfg    Config
	client influxdb2.Client
	query  api.QueryAPI
	log    logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	cached   model.DatasetStats
	cachedAt time.Time
}

// New creates a Source for cfg.
func New(cfg Config, log logger.Logger) *Source {
	cfg.SetDefaults()
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}))
	return &Source{
		cfg:    cfg,
		client: client,
		query:  client.QueryAPI(cfg.Org),
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

// NopSource reports no telemetry.
type NopSource struct{}

// DatasetStats returns zero stats.
func (NopSource) DatasetStats(context.Context) (model.DatasetStats, error) {
	return model.DatasetStats{}, nil
}

// NewWithFallback pings InfluxDB and returns a NopSource when it is
// disabled or unhealthy.
func NewWithFallback(cfg Config, log logger.Logger) fleetstats.DatasetSource {
	log = logger.OrNop(log)
	if !cfg.Enabled {
		return NopSource{}
	}
	src := New(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := src.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			log.Errorf("influx health check error: %v", err)
		} else {
			log.Errorf("influx health status: %s", health.Status)
		}
		src.Close()
		return NopSource{}
	}
	return src
}

// DatasetStats returns the line and vehicle counts. Partial failures are
// logged and leave the affected count at zero.
func (s *Source) DatasetStats(ctx context.Context) (model.DatasetStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !s.cachedAt.IsZero() && now.Sub(s.cachedAt) < time.Duration(s.cfg.CacheTTLSeconds)*time.Second {
		return s.cached, nil
	}
	var st model.DatasetStats
	lines, lerr := s.countLines(ctx)
	if lerr != nil {
		s.log.Warnf("line count query failed: %v", lerr)
	}
	st.TotalLines = lines * LineEstimateFactor
	vehicles, verr := s.uniqueVehicles(ctx)
	if verr != nil {
		s.log.Warnf("vehicle count query failed: %v", verr)
	}
	st.UniqueVehicles = vehicles
	st.LastUpdate = now.UTC().Truncate(time.Second)
	if lerr != nil && verr != nil {
		return model.DatasetStats{}, fmt.Errorf("influx stats: %w", lerr)
	}
	s.cached, s.cachedAt = st, now
	return st, nil
}

func (s *Source) countLines(ctx context.Context) (int64, error) {
	flux := fmt.Sprintf(`from(bucket:"%s")
  |> range(start: -30d)
  |> count()
  |> sum()`, s.cfg.Bucket)
	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	var total int64
	for res.Next() {
		switch v := res.Record().Value().(type) {
		case int64:
			total += v
		case float64:
			total += int64(v)
		}
	}
	return total, res.Err()
}

func (s *Source) uniqueVehicles(ctx context.Context) (int, error) {
	flux := fmt.Sprintf(`from(bucket:"%s")
  |> range(start: -7d)
  |> filter(fn:(r)=> r._measurement=="%s")
  |> keep(columns: ["car_id"])
  |> distinct(column: "car_id")`, s.cfg.Bucket, s.cfg.Measurement)
	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	ids := map[string]struct{}{}
	for res.Next() {
		if v := res.Record().Value(); v != nil {
			if id := fmt.Sprint(v); id != "" {
				ids[id] = struct{}{}
			}
		}
	}
	return len(ids), res.Err()
}

// Close releases the client.
func (s *Source) Close() { s.client.Close() }
