package engine

import (
	"testing"

	"github.com/observastack/intel-engine/internal/knowledge"
	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/models"
)

func TestDetectPatternsMemoryPressure(t *testing.T) {
	matcher := NewPatternMatcher(nil, nil, nil)

	snapshot := models.TelemetrySnapshot{
		Metrics: map[string]float64{"cpu": 92, "memory": 85, "latency": 1500, "error_rate": 2.1},
	}

	matches := matcher.DetectPatterns(snapshot)
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match, got %d: %+v", len(matches), matches)
	}
	got := matches[0]
	if got.Name != "memory_pressure_gc" {
		t.Fatalf("match = %s, want memory_pressure_gc", got.Name)
	}
	// cpu and memory triggers fire, gc_time does not: 2 of 3.
	if want := 2.0 / 3.0; got.Confidence != want {
		t.Fatalf("confidence = %g, want %g", got.Confidence, want)
	}
	if got.Learned {
		t.Fatalf("static signature reported as learned")
	}
	if got.RootCause == "" || len(got.Solutions) == 0 {
		t.Fatalf("match missing remediation detail: %+v", got)
	}
}

func TestLogTriggerRaisesConfidence(t *testing.T) {
	var sig models.Signature
	for _, s := range knowledge.New().Signatures() {
		if s.Name == "database_bottleneck" {
			sig = s
		}
	}
	if sig.Name == "" {
		t.Fatalf("database_bottleneck not in catalog")
	}

	quiet := models.TelemetrySnapshot{
		Metrics: map[string]float64{"db_latency": 1500},
	}
	if got := signatureConfidence(sig, quiet); got != 1.0/3.0 {
		t.Fatalf("confidence without logs = %g, want 1/3", got)
	}

	noisy := models.TelemetrySnapshot{
		Metrics: map[string]float64{"db_latency": 1500},
		Logs:    []string{"Database connection TIMEOUT after 30s"},
	}
	if got := signatureConfidence(sig, noisy); got != 2.0/3.0 {
		t.Fatalf("confidence with timeout log = %g, want 2/3", got)
	}

	// 2/3 clears the detection threshold, 1/3 does not.
	matcher := NewPatternMatcher(nil, nil, nil)
	if matches := matcher.DetectPatterns(quiet); len(matches) != 0 {
		t.Fatalf("quiet snapshot should not match, got %+v", matches)
	}
	matches := matcher.DetectPatterns(noisy)
	if len(matches) != 1 || matches[0].Name != "database_bottleneck" {
		t.Fatalf("noisy snapshot should match database_bottleneck, got %+v", matches)
	}
}

func TestLearnedPatternMatching(t *testing.T) {
	state := learner.NewState()
	incidents := learner.NewIncidentLearner(state, nil)
	matcher := NewPatternMatcher(nil, state, nil)

	incident := models.Incident{
		Symptoms:  []string{"high_cpu", "slow_response"},
		RootCause: "runaway report job",
		Solution:  "throttle the report scheduler",
	}

	// cpu 85 produces the high_cpu symptom but clears no static signature.
	snapshot := models.TelemetrySnapshot{Metrics: map[string]float64{"cpu": 85}}

	incidents.LearnFromIncident(incident)
	if matches := matcher.DetectPatterns(snapshot); len(matches) != 0 {
		t.Fatalf("single occurrence (confidence 0.5) must not match, got %+v", matches)
	}

	incidents.LearnFromIncident(incident)
	incidents.LearnFromIncident(incident)

	matches := matcher.DetectPatterns(snapshot)
	if len(matches) != 1 {
		t.Fatalf("expected learned match after third occurrence, got %+v", matches)
	}
	got := matches[0]
	if got.Name != "learned_high_cpu_slow_response" {
		t.Fatalf("match name = %s", got.Name)
	}
	if !got.Learned {
		t.Fatalf("learned flag not set")
	}
	if got.RootCause != incident.RootCause {
		t.Fatalf("root cause = %q, want %q", got.RootCause, incident.RootCause)
	}
	if len(got.Solutions) != 1 || got.Solutions[0] != incident.Solution {
		t.Fatalf("solutions = %v", got.Solutions)
	}
}

func TestLearnedPatternRequiresSymptomOverlap(t *testing.T) {
	state := learner.NewState()
	incidents := learner.NewIncidentLearner(state, nil)
	for i := 0; i < 3; i++ {
		incidents.LearnFromIncident(models.Incident{Symptoms: []string{"disk_full"}, RootCause: "r", Solution: "s"})
	}

	matcher := NewPatternMatcher(nil, state, nil)
	snapshot := models.TelemetrySnapshot{Metrics: map[string]float64{"cpu": 85}}
	if matches := matcher.DetectPatterns(snapshot); len(matches) != 0 {
		t.Fatalf("no symptom overlap, expected no matches: %+v", matches)
	}
}

func TestDetectPatternsSortedDescending(t *testing.T) {
	matcher := NewPatternMatcher(nil, nil, nil)

	snapshot := models.TelemetrySnapshot{
		Metrics: map[string]float64{
			"cpu":        92,
			"memory":     84,
			"gc_time":    150,
			"db_latency": 2500,
			"latency":    2500,
			"error_rate": 7,
		},
		Logs: []string{"upstream timeouts exceeded budget"},
	}

	matches := matcher.DetectPatterns(snapshot)
	if len(matches) < 2 {
		t.Fatalf("expected multiple matches, got %+v", matches)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Confidence > matches[i-1].Confidence {
			t.Fatalf("matches not sorted descending: %+v", matches)
		}
	}
}

func TestSignatureWithoutTriggersNeverMatches(t *testing.T) {
	sig := models.Signature{Name: "empty", Confidence: 0.99}
	if got := signatureConfidence(sig, models.TelemetrySnapshot{Metrics: map[string]float64{"cpu": 100}}); got != 0 {
		t.Fatalf("confidence = %g, want 0", got)
	}
}

func TestInvalidConditionNeverSatisfied(t *testing.T) {
	trig := models.Trigger{Name: "gc_pressure", Condition: models.ParseCondition("increasing")}
	snapshot := models.TelemetrySnapshot{Metrics: map[string]float64{"gc_pressure": 1e9}}
	if evaluateTrigger(trig, snapshot) {
		t.Fatalf("invalid condition must not be satisfied even when the metric is present")
	}
}

func TestExtractSymptoms(t *testing.T) {
	cases := []struct {
		name     string
		snapshot models.TelemetrySnapshot
		want     []string
	}{
		{
			name: "metric thresholds",
			snapshot: models.TelemetrySnapshot{
				Metrics: map[string]float64{"cpu": 81, "memory": 90, "latency": 2500, "error_rate": 6},
			},
			want: []string{"high_cpu", "high_memory", "high_latency", "high_error_rate"},
		},
		{
			name:     "boundaries are strict",
			snapshot: models.TelemetrySnapshot{Metrics: map[string]float64{"cpu": 80, "memory": 80, "latency": 2000, "error_rate": 5}},
			want:     []string{},
		},
		{
			name:     "log markers",
			snapshot: models.TelemetrySnapshot{Logs: []string{"Read TIMEOUT on upstream", "java.lang.OutOfMemoryError: heap"}},
			want:     []string{"timeouts", "memory_errors"},
		},
		{
			name:     "connection pool needs both words",
			snapshot: models.TelemetrySnapshot{Logs: []string{"connection pool exhausted"}},
			want:     []string{"connection_issues"},
		},
		{
			name:     "connection alone is not enough",
			snapshot: models.TelemetrySnapshot{Logs: []string{"connection reset by peer"}},
			want:     []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSymptoms(tc.snapshot)
			if len(got) != len(tc.want) {
				t.Fatalf("symptoms = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("symptoms = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
