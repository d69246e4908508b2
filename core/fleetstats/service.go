package fleetstats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/fleethealth/core/fault"
	"github.com/kilianp07/fleethealth/core/logger"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/scoring"
)

// FieldCount is the number of telemetry fields recorded per sample.
const FieldCount = 254

// Store returns the latest loaded dataset.
type Store interface {
	Snapshot() Snapshot
}

// DatasetSource reports raw telemetry volume.
type DatasetSource interface {
	DatasetStats(ctx context.Context) (model.DatasetStats, error)
}

// Service answers fleet statistics and vehicle detail queries from a Store.
// It satisfies the view data source contract so the dashboard can run
// against a local dataset.
type Service struct {
	store   Store
	dataset DatasetSource
	log     logger.Logger
	now     func() time.Time
}

// NewService creates a Service. dataset and log may be nil.
func NewService(store Store, dataset DatasetSource, log logger.Logger) *Service {
	return &Service{store: store, dataset: dataset, log: logger.OrNop(log), now: time.Now}
}

// Stats builds the statistics payload. q only scopes the battery score
// block; the other blocks always describe the whole fleet.
func (s *Service) Stats(ctx context.Context, q model.StatsQuery) (model.Stats, error) {
	snap := s.store.Snapshot()
	now := s.now()
	return model.Stats{
		VehicleTypes: VehicleTypes(snap.Records),
		Completeness: CompletenessOf(snap.Records),
		BatteryScore: BatteryScore(snap.Records, q),
		Dataset:      s.datasetStats(ctx, snap, now),
		Performance:  PerformanceOf(snap.Records, now),
	}, nil
}

func (s *Service) datasetStats(ctx context.Context, snap Snapshot, now time.Time) model.DatasetStats {
	var ds model.DatasetStats
	if s.dataset != nil {
		var err error
		ds, err = s.dataset.DatasetStats(ctx)
		if err != nil {
			s.log.Warnf("dataset stats unavailable: %v", err)
			ds = model.DatasetStats{}
		}
	}
	ds.FieldCount = FieldCount
	ds.CSVCount = snap.Files
	ds.TotalSizeGB = scoring.Round(float64(snap.TotalBytes)/(1<<30), 1)
	if ds.LastUpdate.IsZero() {
		ds.LastUpdate = now.UTC().Truncate(time.Second)
	}
	return ds
}

// VehicleDetail returns the detail payload of id or an error matching
// fault.ErrNotFound.
func (s *Service) VehicleDetail(_ context.Context, id string) (model.VehicleDetail, error) {
	id = strings.TrimSpace(id)
	snap := s.store.Snapshot()
	rec, ok := snap.Find(id)
	if !ok {
		return model.VehicleDetail{}, fmt.Errorf("vehicle %q: %w", id, fault.ErrNotFound)
	}
	return Detail(rec, snap.Records), nil
}
