package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder records dataset API traffic and dataset reloads.
type PromRecorder struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
	vehicles prometheus.Gauge
}

// NewPromRecorder registers the API metrics on the provided registerer.
// If reg is nil, the default registerer is used. If the collectors are
// already registered, the existing ones are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of dataset API requests",
	}, []string{"route", "method", "code"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Dataset API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"}))
	if err != nil {
		return nil, err
	}
	reloads, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_reloads_total",
		Help: "Number of dataset reloads by result",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}
	vehicles, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dataset_vehicles",
		Help: "Number of vehicles in the loaded dataset",
	}))
	if err != nil {
		return nil, err
	}
	return &PromRecorder{requests: requests, latency: latency, reloads: reloads, vehicles: vehicles}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(T), nil
		}
		return c, err
	}
	return c, nil
}

// Middleware counts requests by route template and status code.
func (p *PromRecorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		p.requests.WithLabelValues(route, r.Method, strconv.Itoa(m.Code)).Inc()
		p.latency.WithLabelValues(route).Observe(m.Duration.Seconds())
	})
}

// RecordReload counts a dataset reload and tracks the vehicle count of
// successful ones.
func (p *PromRecorder) RecordReload(vehicles int, err error) {
	if err != nil {
		p.reloads.WithLabelValues("error").Inc()
		return
	}
	p.reloads.WithLabelValues("ok").Inc()
	p.vehicles.Set(float64(vehicles))
}
