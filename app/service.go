package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/fleethealth/api/fleet"
	"github.com/kilianp07/fleethealth/config"
	"github.com/kilianp07/fleethealth/core/fleetstats"
	coremon "github.com/kilianp07/fleethealth/core/monitoring"
	"github.com/kilianp07/fleethealth/infra/accesslog"
	"github.com/kilianp07/fleethealth/infra/dataset"
	"github.com/kilianp07/fleethealth/infra/influx"
	"github.com/kilianp07/fleethealth/infra/logger"
	"github.com/kilianp07/fleethealth/infra/metrics"
	"github.com/kilianp07/fleethealth/infra/monitoring"
)

// Service serves the dataset API from the local CSV export.
type Service struct {
	Store *dataset.Store
	Stats *fleetstats.Service

	cfg     *config.Config
	handler http.Handler
	logs    *logger.Factory
	log     logger.Logger
	mon     coremon.Monitor
	telem   fleetstats.DatasetSource
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logs, err := logger.NewFactory(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	rec, err := metrics.NewPromRecorder(nil)
	if err != nil {
		return nil, fmt.Errorf("prom recorder: %w", err)
	}

	store := dataset.NewStore(cfg.Dataset, logs.New("dataset"), rec)
	telem := influx.NewWithFallback(cfg.Influx, logs.New("influx"))
	stats := fleetstats.NewService(store, telem, logs.New("stats"))

	opts := fleet.Options{
		Log:        logs.New("api"),
		Monitor:    mon,
		Middleware: []mux.MiddlewareFunc{rec.Middleware},
	}
	if cfg.Server.AccessLog {
		opts.AccessLog = accesslog.New(logs.Writer())
	}

	return &Service{
		Store:   store,
		Stats:   stats,
		cfg:     cfg,
		handler: fleet.NewHandler(stats, opts),
		logs:    logs,
		log:     logs.New("service"),
		mon:     mon,
		telem:   telem,
	}, nil
}

// Handler returns the API handler.
func (s *Service) Handler() http.Handler { return s.handler }

// Run loads the dataset, serves the API and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Store.Reload(); err != nil {
		s.mon.CaptureException(err, map[string]string{"stage": "dataset_load"})
	}
	go s.Store.Run(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.Server.Addr, Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("dataset api listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownTimeoutSecs)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("api server shutdown: %v", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if c, ok := s.telem.(*influx.Source); ok {
		c.Close()
	}
	s.mon.Flush(2 * time.Second)
	return s.logs.Close()
}

// NewLocalSource loads the CSV export once and returns a statistics service
// over it, for dashboards running without the API server.
func NewLocalSource(cfg *config.Config, logs *logger.Factory) (*fleetstats.Service, error) {
	store := dataset.NewStore(cfg.Dataset, logs.New("dataset"), nil)
	if err := store.Reload(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return fleetstats.NewService(store, influx.NewWithFallback(cfg.Influx, logs.New("influx")), logs.New("stats")), nil
}
