package models

import "time"

// TelemetrySnapshot bundles the point-in-time signals submitted for analysis.
type TelemetrySnapshot struct {
	Metrics map[string]float64 `json:"metrics"`
	Logs    []string           `json:"logs"`
	Traces  []TraceRecord      `json:"traces"`
}

// Metric returns the named metric value, treating absent metrics as zero.
func (s TelemetrySnapshot) Metric(name string) float64 {
	if s.Metrics == nil {
		return 0
	}
	return s.Metrics[name]
}

// TraceRecord is a minimal span representation; the matcher accepts traces as
// input but the current trigger policy does not inspect them.
type TraceRecord struct {
	Service    string  `json:"service"`
	Operation  string  `json:"operation"`
	DurationMs float64 `json:"duration_ms"`
}

// Incident is a resolved-incident training record. Immutable once recorded.
type Incident struct {
	Symptoms  []string           `json:"symptoms"`
	RootCause string             `json:"root_cause"`
	Solution  string             `json:"solution"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp time.Time          `json:"timestamp"`
}

// TrainingStats summarises one offline training pass.
type TrainingStats struct {
	IncidentsProcessed int `json:"incidents_processed"`
	MetricsSamples     int `json:"metrics_samples"`
	PatternsLearned    int `json:"patterns_learned"`
}
