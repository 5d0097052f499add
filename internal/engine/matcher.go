package engine

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/observastack/intel-engine/internal/knowledge"
	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/models"
)

const (
	// detectionThreshold gates static signature matches.
	detectionThreshold = 0.6
	// learnedThreshold gates learned pattern matches. Inclusive: a pattern
	// reinforced to exactly 0.7 is matched.
	learnedThreshold = 0.7
)

// PatternMatcher evaluates telemetry against the static knowledge base and
// the learner's current pattern state.
type PatternMatcher struct {
	kb     *knowledge.Base
	state  *learner.State
	logger *slog.Logger
}

// NewPatternMatcher constructs a PatternMatcher.
func NewPatternMatcher(kb *knowledge.Base, state *learner.State, logger *slog.Logger) *PatternMatcher {
	if kb == nil {
		kb = knowledge.New()
	}
	if state == nil {
		state = learner.NewState()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternMatcher{kb: kb, state: state, logger: logger}
}

// DetectPatterns scores every known signature against the snapshot and
// returns candidate explanations sorted by confidence descending. Static
// signatures keep discovery order ahead of learned ones on ties.
func (m *PatternMatcher) DetectPatterns(snapshot models.TelemetrySnapshot) []models.Match {
	matches := make([]models.Match, 0)

	for _, sig := range m.kb.Signatures() {
		confidence := signatureConfidence(sig, snapshot)
		if confidence <= detectionThreshold {
			continue
		}
		matches = append(matches, models.Match{
			Name:       sig.Name,
			Confidence: confidence,
			Symptoms:   sig.Symptoms,
			RootCause:  sig.RootCause,
			Solutions:  sig.Solutions,
			Prevention: sig.Prevention,
		})
	}

	symptoms := ExtractSymptoms(snapshot)
	patterns := m.state.Patterns()
	for _, key := range sortedPatternKeys(patterns) {
		pattern := patterns[key]
		if pattern.Confidence < learnedThreshold {
			continue
		}
		if !intersects(pattern.Symptoms, symptoms) {
			continue
		}
		matches = append(matches, models.Match{
			Name:       "learned_" + key,
			Confidence: pattern.Confidence,
			Symptoms:   pattern.Symptoms,
			RootCause:  pattern.RootCause,
			Solutions:  []string{pattern.Solution},
			Learned:    true,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	m.logger.Debug("patterns detected", slog.Int("matches", len(matches)), slog.Any("symptoms", symptoms))
	return matches
}

// signatureConfidence is the fraction of triggers the snapshot satisfies.
// Signatures without triggers always score zero.
func signatureConfidence(sig models.Signature, snapshot models.TelemetrySnapshot) float64 {
	if len(sig.Triggers) == 0 {
		return 0
	}
	satisfied := 0
	for _, trig := range sig.Triggers {
		if evaluateTrigger(trig, snapshot) {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(sig.Triggers))
}

// evaluateTrigger applies the numeric condition when the trigger name is a
// metric key; otherwise the name is tested as a case-insensitive substring of
// the log lines. Invalid conditions are never satisfied.
func evaluateTrigger(trig models.Trigger, snapshot models.TelemetrySnapshot) bool {
	if value, ok := snapshot.Metrics[trig.Name]; ok {
		return trig.Condition.Satisfied(value)
	}

	marker := strings.ToLower(trig.Name)
	for _, line := range snapshot.Logs {
		if strings.Contains(strings.ToLower(line), marker) {
			return true
		}
	}
	return false
}

// ExtractSymptoms derives the current symptom tag set from telemetry using
// fixed rules. Missing metrics are treated as zero.
func ExtractSymptoms(snapshot models.TelemetrySnapshot) []string {
	symptoms := make([]string, 0, 4)

	if snapshot.Metric("cpu") > 80 {
		symptoms = append(symptoms, "high_cpu")
	}
	if snapshot.Metric("memory") > 80 {
		symptoms = append(symptoms, "high_memory")
	}
	if snapshot.Metric("latency") > 2000 {
		symptoms = append(symptoms, "high_latency")
	}
	if snapshot.Metric("error_rate") > 5 {
		symptoms = append(symptoms, "high_error_rate")
	}

	logText := strings.ToLower(strings.Join(snapshot.Logs, " "))
	if strings.Contains(logText, "timeout") {
		symptoms = append(symptoms, "timeouts")
	}
	if strings.Contains(logText, "outofmemoryerror") {
		symptoms = append(symptoms, "memory_errors")
	}
	if strings.Contains(logText, "connection") && strings.Contains(logText, "pool") {
		symptoms = append(symptoms, "connection_issues")
	}

	return symptoms
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func sortedPatternKeys(patterns map[string]models.LearnedPattern) []string {
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
