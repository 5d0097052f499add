package services

import (
	"context"
	"testing"
	"time"

	"github.com/observastack/intel-engine/internal/cache"
	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/models"
)

func newTestService(provider cache.Provider) *IntelService {
	return NewIntelService(nil, learner.NewState(), Options{
		Cache:    provider,
		CacheTTL: time.Minute,
	})
}

func TestAnalyzeDetectsMemoryPressure(t *testing.T) {
	service := newTestService(nil)

	result, err := service.Analyze(context.Background(), models.TelemetrySnapshot{
		Metrics: map[string]float64{"cpu": 92, "memory": 85, "latency": 1500, "error_rate": 2.1},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.AnalysisID == "" {
		t.Fatalf("missing analysis id")
	}
	if result.Analysis.PrimaryRootCause != "Memory pressure causing excessive garbage collection" {
		t.Fatalf("primary root cause = %q", result.Analysis.PrimaryRootCause)
	}
	if len(result.ImmediateActions) == 0 || len(result.DetailedSolutions) == 0 {
		t.Fatalf("remediation detail missing: %+v", result)
	}
	if result.Context.Severity != "critical" {
		t.Fatalf("severity = %q, want critical (cpu > 90)", result.Context.Severity)
	}
}

func TestAnalyzeFallback(t *testing.T) {
	service := newTestService(nil)

	result, err := service.Analyze(context.Background(), models.TelemetrySnapshot{
		Metrics: map[string]float64{"cpu": 20, "memory": 30},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Analysis.Status != "No specific patterns detected" {
		t.Fatalf("status = %q", result.Analysis.Status)
	}
	if result.Analysis.Confidence != 0.3 {
		t.Fatalf("confidence = %g, want 0.3", result.Analysis.Confidence)
	}
	if len(result.GeneralRecommendations) == 0 {
		t.Fatalf("fallback must include general recommendations")
	}
}

func TestAnalyzeCachesResults(t *testing.T) {
	service := newTestService(cache.NewMemoryProvider())

	snapshot := models.TelemetrySnapshot{
		Metrics: map[string]float64{"cpu": 92, "memory": 85},
	}

	first, err := service.Analyze(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := service.Analyze(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if first.AnalysisID != second.AnalysisID {
		t.Fatalf("identical snapshots should hit the cache: %s vs %s", first.AnalysisID, second.AnalysisID)
	}

	other, err := service.Analyze(context.Background(), models.TelemetrySnapshot{
		Metrics: map[string]float64{"cpu": 92, "memory": 86},
	})
	if err != nil {
		t.Fatalf("third analyze: %v", err)
	}
	if other.AnalysisID == first.AnalysisID {
		t.Fatalf("different snapshots must not share a cache entry")
	}
}

func TestAnalyzeWithoutCacheAlwaysFresh(t *testing.T) {
	service := newTestService(nil)

	snapshot := models.TelemetrySnapshot{Metrics: map[string]float64{"cpu": 50}}
	first, _ := service.Analyze(context.Background(), snapshot)
	second, _ := service.Analyze(context.Background(), snapshot)
	if first.AnalysisID == second.AnalysisID {
		t.Fatalf("noop cache must produce a fresh analysis every call")
	}
}

func TestTrain(t *testing.T) {
	service := newTestService(nil)

	history := []map[string]float64{
		{"cpu": 30, "memory": 50, "latency": 100, "error_rate": 0.1},
		{"cpu": 40, "memory": 55, "latency": 120, "error_rate": 0.2},
		{"cpu": 50, "memory": 60, "latency": 150, "error_rate": 0.3},
	}
	incidents := []models.Incident{
		{Symptoms: []string{"high_cpu"}, RootCause: "r1", Solution: "s1"},
		{Symptoms: []string{"high_cpu"}, RootCause: "r1", Solution: "s1"},
		{Symptoms: []string{"oom"}, RootCause: "r2", Solution: "s2"},
	}

	stats, err := service.Train(context.Background(), history, incidents)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if stats.IncidentsProcessed != 3 || stats.MetricsSamples != 3 || stats.PatternsLearned != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	// Baselines learned from the history drive anomaly classification.
	if !service.IsAnomaly("cpu", 500) {
		t.Fatalf("500 should be anomalous against a p95 of 50")
	}
	if service.IsAnomaly("cpu", 45) {
		t.Fatalf("45 should be within normal range")
	}
}

func TestTrainCancelled(t *testing.T) {
	service := newTestService(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := service.Train(ctx, nil, nil); err == nil {
		t.Fatalf("cancelled context must abort training")
	}
}

func TestSnapshotRestoreRoundtrip(t *testing.T) {
	service := newTestService(nil)
	if _, err := service.Train(context.Background(), []map[string]float64{{"cpu": 40}}, []models.Incident{
		{Symptoms: []string{"high_cpu"}, RootCause: "r", Solution: "s"},
	}); err != nil {
		t.Fatalf("train: %v", err)
	}

	model := service.Snapshot(models.TrainingStats{IncidentsProcessed: 1, MetricsSamples: 1, PatternsLearned: 1})

	fresh := newTestService(nil)
	fresh.Restore(model)

	restored := fresh.Snapshot(models.TrainingStats{})
	if len(restored.LearnedPatterns) != 1 {
		t.Fatalf("patterns not restored: %+v", restored.LearnedPatterns)
	}
	if restored.Baselines["cpu"] != model.Baselines["cpu"] {
		t.Fatalf("baselines not restored")
	}
}
