package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register must tolerate existing collectors: %v", err)
	}
}

func TestObserveAnalysis(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	ObserveAnalysis(5*time.Millisecond, OutcomeSuccess, 2)
	ObserveAnalysis(-time.Second, OutcomeError, 0)
	ObserveAnalysis(time.Millisecond, "weird", 1)
	ObserveTraining()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"intel_engine_analyses_total",
		"intel_engine_analysis_seconds",
		"intel_engine_patterns_detected",
		"intel_engine_training_runs_total",
	} {
		if !found[name] {
			t.Fatalf("metric family %s not exported", name)
		}
	}
}
