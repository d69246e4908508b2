package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleethealth/app"
	"github.com/kilianp07/fleethealth/config"
	"github.com/kilianp07/fleethealth/core/filter"
	"github.com/kilianp07/fleethealth/core/monitoring"
	"github.com/kilianp07/fleethealth/core/view"
	"github.com/kilianp07/fleethealth/infra/dataclient"
	"github.com/kilianp07/fleethealth/infra/logger"
	inframon "github.com/kilianp07/fleethealth/infra/monitoring"
	"github.com/kilianp07/fleethealth/internal/eventbus"
)

// request is what the dashboard commands ask the controller for.
type request struct {
	Grade   string
	CarType string
	Search  string
	Vehicle string
}

type dashboardFlags struct {
	local   bool
	timeout time.Duration
	req     request
}

func (f *dashboardFlags) register(cmd *cobra.Command, withFilters bool) {
	cmd.Flags().BoolVar(&f.local, "local", false, "read the CSV dataset directly instead of calling the API")
	cmd.Flags().DurationVar(&f.timeout, "timeout", time.Minute, "maximum time to wait for the data")
	if withFilters {
		cmd.Flags().StringVar(&f.req.Grade, "grade", filter.All, "grade filter: excellent, good, normal, bad or all")
		cmd.Flags().StringVar(&f.req.CarType, "car-type", filter.All, "car type filter")
		cmd.Flags().StringVar(&f.req.Search, "search", "", "match vehicle id or car type")
	}
}

// openSource returns the API client, or a dataset reader with --local.
func openSource(cfg *config.Config, local bool, logs *logger.Factory) (view.Source, error) {
	if local {
		return app.NewLocalSource(cfg, logs)
	}
	return dataclient.New(cfg.Client, logs.New("client"))
}

// fetchView runs a controller against the configured source until it has
// settled on req.
func fetchView(cmd *cobra.Command, f dashboardFlags) (view.View, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return view.View{}, fmt.Errorf("load config: %w", err)
	}
	logCfg := cfg.Logging
	if logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	logs, err := logger.NewFactory(logCfg)
	if err != nil {
		return view.View{}, err
	}
	defer func() { _ = logs.Close() }()
	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return view.View{}, fmt.Errorf("sentry: %w", err)
	}
	defer mon.Flush(2 * time.Second)

	src, err := openSource(cfg, f.local, logs)
	if err != nil {
		return view.View{}, err
	}
	vc := cfg.View.Controller()
	vc.RefreshInterval = 0
	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()
	return settle(ctx, src, vc, logs.New("view"), mon, f.req)
}

// settle waits for the first snapshot, applies req and returns the first
// view reflecting it.
func settle(ctx context.Context, src view.Source, cfg view.Config, log logger.Logger, mon monitoring.Monitor, req request) (view.View, error) {
	grade, err := filter.ParseGrade(req.Grade)
	if err != nil {
		return view.View{}, err
	}
	carType := strings.TrimSpace(req.CarType)
	if carType == "" {
		carType = filter.All
	}
	vehicle := strings.TrimSpace(req.Vehicle)

	bus := eventbus.NewTyped[view.View]()
	defer bus.Close()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	ctrl := view.New(src, bus, cfg, log, mon)
	go func() { _ = ctrl.Run(runCtx) }()

	dispatched := false
	for {
		select {
		case <-ctx.Done():
			return view.View{}, fmt.Errorf("waiting for fleet data: %w", ctx.Err())
		case v, ok := <-sub:
			if !ok {
				return view.View{}, errors.New("dashboard stopped")
			}
			if v.Loading {
				continue
			}
			if !v.Loaded {
				if v.Notice != "" {
					return v, errors.New(v.Notice)
				}
				continue
			}
			if !dispatched {
				ctrl.Dispatch(view.SetFilters{Grade: grade, CarType: carType})
				ctrl.Dispatch(view.SetSearch{Text: req.Search})
				if vehicle != "" {
					ctrl.Dispatch(view.SelectVehicle{ID: vehicle})
				}
				dispatched = true
			}
			f := v.Filter
			if f.Grade != grade || f.CarType != carType || f.Search != req.Search {
				continue
			}
			if vehicle == "" {
				return v, nil
			}
			if v.Detail.VehicleID != vehicle {
				continue
			}
			switch v.Detail.Phase {
			case view.DetailShown.String():
				return v, nil
			case view.DetailError.String():
				return v, fmt.Errorf("vehicle %s: %s", vehicle, v.Detail.Error)
			}
		}
	}
}
