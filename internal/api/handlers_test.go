package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/observastack/intel-engine/internal/config"
	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/models"
	"github.com/observastack/intel-engine/internal/services"
)

func newTestHandlers() *handlers {
	service := services.NewIntelService(nil, learner.NewState(), services.Options{})
	return &handlers{service: service, logger: slog.Default()}
}

func TestHealthz(t *testing.T) {
	h := newTestHandlers()

	rec := httptest.NewRecorder()
	h.health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAnalyzeHandler(t *testing.T) {
	h := newTestHandlers()

	body := `{"metrics":{"cpu":92,"memory":85,"latency":1500,"error_rate":2.1}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.analyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result models.AnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.AnalysisID == "" {
		t.Fatalf("missing analysis id")
	}
	if result.Analysis.PrimaryRootCause == "" {
		t.Fatalf("expected a detected pattern for this snapshot: %+v", result.Analysis)
	}
}

func TestAnalyzeHandlerRejectsEmptyRequest(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.analyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
		t.Fatalf("expected error payload, got %q (%v)", rec.Body.String(), err)
	}
}

func TestAnalyzeHandlerRejectsBadJSON(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.analyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeHandlerRejectsGet(t *testing.T) {
	h := newTestHandlers()

	rec := httptest.NewRecorder()
	h.analyze(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestTrainHandler(t *testing.T) {
	h := newTestHandlers()

	body := `{
		"metrics_history": [
			{"cpu": 30, "memory": 50, "latency": 100, "error_rate": 0.1},
			{"cpu": 40, "memory": 55, "latency": 120, "error_rate": 0.2}
		],
		"incidents": [
			{"symptoms": ["high_cpu"], "root_cause": "r", "solution": "s"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/train", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.train(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp trainResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Stats.IncidentsProcessed != 1 || resp.Stats.MetricsSamples != 2 || resp.Stats.PatternsLearned != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
}

func TestAnomalyHandler(t *testing.T) {
	h := newTestHandlers()

	// Train first so the baseline carries learned percentiles.
	trainBody := `{"metrics_history": [{"cpu": 30}, {"cpu": 40}, {"cpu": 50}]}`
	rec := httptest.NewRecorder()
	h.train(rec, httptest.NewRequest(http.MethodPost, "/api/v1/train", strings.NewReader(trainBody)))
	if rec.Code != http.StatusOK {
		t.Fatalf("train status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/anomaly", strings.NewReader(`{"metric":"cpu","value":500}`))
	rec = httptest.NewRecorder()
	h.anomaly(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp anomalyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Anomaly {
		t.Fatalf("500 against a p95 of 50 should be anomalous: %+v", resp)
	}

	rec = httptest.NewRecorder()
	h.anomaly(rec, httptest.NewRequest(http.MethodPost, "/api/v1/anomaly", strings.NewReader(`{"value":500}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing metric should 400, got %d", rec.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	service := services.NewIntelService(nil, learner.NewState(), services.Options{})

	cfg := config.ServerConfig{Address: "127.0.0.1:0", GracefulTimeout: time.Second}
	srv, err := NewServer(cfg, service, slog.Default())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if srv.Address() == "" {
		t.Fatalf("expected a bound address")
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Address() + "/healthz")
	if err != nil {
		t.Fatalf("healthz request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	if err := <-done; err != nil {
		t.Fatalf("server exited with error: %v", err)
	}
}
