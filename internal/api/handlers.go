package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/observastack/intel-engine/internal/models"
	"github.com/observastack/intel-engine/internal/services"
)

type handlers struct {
	service *services.IntelService
	logger  *slog.Logger
}

// analyzeRequest is the wire shape of an analysis call.
type analyzeRequest struct {
	Metrics map[string]float64   `json:"metrics"`
	Logs    []string             `json:"logs"`
	Traces  []models.TraceRecord `json:"traces"`
}

// trainRequest carries historical samples and resolved incidents for an
// offline training pass.
type trainRequest struct {
	MetricsHistory []map[string]float64 `json:"metrics_history"`
	Incidents      []models.Incident    `json:"incidents"`
}

type trainResponse struct {
	Stats models.TrainingStats `json:"stats"`
}

// anomalyRequest asks whether a single observation is anomalous.
type anomalyRequest struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

type anomalyResponse struct {
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
	Anomaly bool    `json:"anomaly"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Metrics) == 0 && len(req.Logs) == 0 && len(req.Traces) == 0 {
		writeError(w, http.StatusBadRequest, "at least one of metrics, logs or traces is required")
		return
	}

	snapshot := models.TelemetrySnapshot{
		Metrics: req.Metrics,
		Logs:    req.Logs,
		Traces:  req.Traces,
	}

	result, err := h.service.Analyze(r.Context(), snapshot)
	if err != nil {
		h.logger.Error("analysis failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) train(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}

	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stats, err := h.service.Train(r.Context(), req.MetricsHistory, req.Incidents)
	if err != nil {
		h.logger.Error("training failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "training failed")
		return
	}

	writeJSON(w, http.StatusOK, trainResponse{Stats: stats})
}

func (h *handlers) anomaly(w http.ResponseWriter, r *http.Request) {
	if !enforcePost(w, r) {
		return
	}

	var req anomalyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Metric == "" {
		writeError(w, http.StatusBadRequest, "metric is required")
		return
	}

	writeJSON(w, http.StatusOK, anomalyResponse{
		Metric:  req.Metric,
		Value:   req.Value,
		Anomaly: h.service.IsAnomaly(req.Metric, req.Value),
	})
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
