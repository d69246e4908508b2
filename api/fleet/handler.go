// Package fleet serves the fleet statistics and vehicle detail endpoints.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kilianp07/fleethealth/core/fault"
	"github.com/kilianp07/fleethealth/core/filter"
	"github.com/kilianp07/fleethealth/core/logger"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/monitoring"
	"github.com/kilianp07/fleethealth/infra/accesslog"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// Service answers the dataset queries.
type Service interface {
	Stats(ctx context.Context, q model.StatsQuery) (model.Stats, error)
	VehicleDetail(ctx context.Context, id string) (model.VehicleDetail, error)
}

// Options configures the HTTP handler. Every field is optional.
type Options struct {
	Log        logger.Logger
	Monitor    monitoring.Monitor
	Middleware []mux.MiddlewareFunc
	// AccessLog receives one entry per request.
	AccessLog *logrus.Logger
}

type api struct {
	svc Service
	log logger.Logger
	mon monitoring.Monitor
}

type ctxKey struct{}

// RequestID returns the correlation id stored by the request id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// NewRouter registers the API routes.
func NewRouter(svc Service, opts Options) *mux.Router {
	a := &api{svc: svc, log: logger.OrNop(opts.Log), mon: monitoring.OrNop(opts.Monitor)}
	r := mux.NewRouter()
	r.Use(requestID)
	for _, mw := range opts.Middleware {
		r.Use(mw)
	}
	r.HandleFunc("/health", a.health).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", a.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/vehicle-detail/{id}", a.detail).Methods(http.MethodGet)
	return r
}

// NewHandler wraps the router with panic recovery and the access log.
func NewHandler(svc Service, opts Options) http.Handler {
	var h http.Handler = NewRouter(svc, opts)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger.OrNop(opts.Log)}))(h)
	if opts.AccessLog != nil {
		h = accesslog.Handler(opts.AccessLog, h)
	}
	return h
}

type recoveryLogger struct{ log logger.Logger }

func (l recoveryLogger) Println(v ...interface{}) { l.log.Errorf("%s", fmt.Sprint(v...)) }

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		r.Header.Set(RequestIDHeader, id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := a.svc.Stats(r.Context(), q)
	if err != nil {
		a.fail(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func parseQuery(r *http.Request) (model.StatsQuery, error) {
	v := r.URL.Query()
	var q model.StatsQuery
	if ct := strings.TrimSpace(v.Get("car_type")); ct != filter.All {
		q.CarType = ct
	}
	g, err := filter.ParseGrade(v.Get("grade"))
	if err != nil {
		return q, err
	}
	if g != filter.All {
		q.Grade = g
	}
	return q, nil
}

func (a *api) detail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	d, err := a.svc.VehicleDetail(r.Context(), id)
	if errors.Is(err, fault.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		a.fail(w, r, "detail", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	rid := RequestID(r.Context())
	a.log.Errorf("%s request %s failed: %v", op, rid, err)
	a.mon.CaptureException(err, map[string]string{"endpoint": op, "request_id": rid})
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
