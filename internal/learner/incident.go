package learner

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/observastack/intel-engine/internal/models"
)

const (
	// initialConfidence seeds a newly learned pattern.
	initialConfidence = 0.5
	// confidenceStep is the additive reinforcement per matching incident.
	// Deliberately not clamped at 1.0; see TestLearnedConfidenceGrowsUnclamped.
	confidenceStep = 0.1
)

// IncidentLearner converts resolved incidents into reinforced patterns.
type IncidentLearner struct {
	state  *State
	logger *slog.Logger
}

// NewIncidentLearner constructs an IncidentLearner over shared learner state.
func NewIncidentLearner(state *State, logger *slog.Logger) *IncidentLearner {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncidentLearner{state: state, logger: logger}
}

// LearnFromIncident appends the incident to the history and reinforces the
// pattern keyed by its canonical symptom set. Symptom order in the input never
// matters: ["a","b"] and ["b","a"] resolve to the same pattern.
func (l *IncidentLearner) LearnFromIncident(incident models.Incident) models.LearnedPattern {
	incident.Timestamp = snapshotTime(incident.Timestamp)

	key := PatternKey(incident.Symptoms)
	pattern := l.state.RecordIncident(incident, key)

	l.logger.Debug("incident recorded",
		slog.String("pattern", key),
		slog.Int("occurrences", pattern.Occurrences),
		slog.Float64("confidence", pattern.Confidence))
	return pattern
}

// LearnFromIncidents processes a batch and returns the number of distinct
// patterns known afterwards. An empty batch leaves state untouched.
func (l *IncidentLearner) LearnFromIncidents(incidents []models.Incident) int {
	for _, incident := range incidents {
		l.LearnFromIncident(incident)
	}
	return l.state.PatternCount()
}

// PatternKey canonicalises a symptom set: sorted tags joined by underscores.
func PatternKey(symptoms []string) string {
	sorted := append([]string(nil), symptoms...)
	sort.Strings(sorted)
	return strings.Join(sorted, "_")
}
