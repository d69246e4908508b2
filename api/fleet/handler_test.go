package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/fleethealth/core/fault"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/infra/accesslog"
)

type stubService struct {
	lastQuery model.StatsQuery
	lastID    string
	statsErr  error
	panicky   bool
}

func (s *stubService) Stats(_ context.Context, q model.StatsQuery) (model.Stats, error) {
	s.lastQuery = q
	if s.panicky {
		panic("boom")
	}
	if s.statsErr != nil {
		return model.Stats{}, s.statsErr
	}
	return model.Stats{
		VehicleTypes: []model.VehicleTypeShare{{CarType: "SEDAN", Count: 2, Percentage: 100}},
	}, nil
}

func (s *stubService) VehicleDetail(_ context.Context, id string) (model.VehicleDetail, error) {
	s.lastID = id
	if id != "car-1" {
		return model.VehicleDetail{}, fmt.Errorf("vehicle %q: %w", id, fault.ErrNotFound)
	}
	return model.VehicleDetail{BasicInfo: model.BasicInfo{CarID: id}}, nil
}

type monitorStub struct{ tags []map[string]string }

func (m *monitorStub) CaptureException(_ error, tags map[string]string) {
	m.tags = append(m.tags, tags)
}

func (m *monitorStub) Flush(time.Duration) {}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestStats_Basic(t *testing.T) {
	svc := &stubService{}
	rr := serve(NewRouter(svc, Options{}), "/api/stats")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out model.Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.VehicleTypes) != 1 || out.VehicleTypes[0].CarType != "SEDAN" {
		t.Fatalf("unexpected output %#v", out)
	}
	if !svc.lastQuery.IsZero() {
		t.Fatalf("expected empty query, got %#v", svc.lastQuery)
	}
}

func TestStats_Query(t *testing.T) {
	svc := &stubService{}
	rr := serve(NewRouter(svc, Options{}), "/api/stats?car_type=SUV&grade=Good")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if svc.lastQuery.CarType != "SUV" || svc.lastQuery.Grade != "good" {
		t.Fatalf("unexpected query %#v", svc.lastQuery)
	}

	serve(NewRouter(svc, Options{}), "/api/stats?car_type=all&grade=all")
	if !svc.lastQuery.IsZero() {
		t.Fatalf("all selectors should not scope, got %#v", svc.lastQuery)
	}
}

func TestStats_InvalidGrade(t *testing.T) {
	rr := serve(NewRouter(&stubService{}, Options{}), "/api/stats?grade=superb")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid grade") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestStats_Failure(t *testing.T) {
	mon := &monitorStub{}
	svc := &stubService{statsErr: errors.New("disk gone")}
	rr := serve(NewRouter(svc, Options{Monitor: mon}), "/api/stats")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	if len(mon.tags) != 1 || mon.tags[0]["endpoint"] != "stats" {
		t.Fatalf("expected captured exception, got %#v", mon.tags)
	}
	if strings.Contains(rr.Body.String(), "disk gone") {
		t.Fatalf("internal error leaked: %s", rr.Body.String())
	}
}

func TestVehicleDetail(t *testing.T) {
	svc := &stubService{}
	r := NewRouter(svc, Options{})
	rr := serve(r, "/api/vehicle-detail/car-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out model.VehicleDetail
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.BasicInfo.CarID != "car-1" {
		t.Fatalf("unexpected detail %#v", out.BasicInfo)
	}

	rr = serve(r, "/api/vehicle-detail/ghost")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	if svc.lastID != "ghost" {
		t.Fatalf("unexpected id %q", svc.lastID)
	}
}

func TestRequestID(t *testing.T) {
	r := NewRouter(&stubService{}, Options{})
	rr := serve(r, "/health")
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected inbound id to be kept, got %q", got)
	}
}

func TestHandler_RecoversAndLogs(t *testing.T) {
	var access bytes.Buffer
	h := NewHandler(&stubService{panicky: true}, Options{AccessLog: accesslog.New(&access)})
	rr := serve(h, "/api/stats")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(access.String(), `"path":"/api/stats"`) {
		t.Fatalf("expected access log line, got %q", access.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	NewRouter(&stubService{}, Options{}).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/stats", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}
