package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/fleethealth/core/fleetstats"
	"github.com/kilianp07/fleethealth/core/logger"
)

// ReloadRecorder observes dataset reloads.
type ReloadRecorder interface {
	RecordReload(vehicles int, err error)
}

// Store keeps the latest loaded snapshot. A failed reload keeps the
// previous snapshot.
type Store struct {
	cfg  Config
	log  logger.Logger
	rec  ReloadRecorder
	load func() (fleetstats.Snapshot, error)

	mu   sync.RWMutex
	snap fleetstats.Snapshot
}

// NewStore creates a Store reading cfg from disk. rec may be nil.
func NewStore(cfg Config, log logger.Logger, rec ReloadRecorder) *Store {
	s := &Store{cfg: cfg, log: logger.OrNop(log), rec: rec}
	s.snap = fleetstats.Snapshot{Records: []fleetstats.Record{}}
	s.load = func() (fleetstats.Snapshot, error) { return LoadDir(s.cfg, s.log) }
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() fleetstats.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reload reads the dataset again.
func (s *Store) Reload() error {
	snap, err := s.load()
	if s.rec != nil {
		s.rec.RecordReload(len(snap.Records), err)
	}
	if err != nil {
		s.log.Errorf("dataset reload failed: %v", err)
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.log.Infof("dataset loaded: %d vehicles from %d files", len(snap.Records), snap.Files)
	return nil
}

// Run reloads the dataset every ReloadIntervalSeconds until ctx is done.
func (s *Store) Run(ctx context.Context) {
	if s.cfg.ReloadIntervalSeconds <= 0 {
		return
	}
	t := time.NewTicker(time.Duration(s.cfg.ReloadIntervalSeconds) * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = s.Reload()
		}
	}
}
