package learner

import (
	"sync"
	"time"

	"github.com/observastack/intel-engine/internal/models"
)

// State is the single shared mutable resource of the engine: learned
// baselines, reinforced incident patterns and the incident history. Training
// calls mutate it, detection calls read it. Baseline replacement is atomic
// (built fully, then swapped under the lock) and incident learning serializes
// its read-modify-write so concurrent incidents never under-count.
type State struct {
	mu        sync.RWMutex
	baselines map[string]models.Baseline
	patterns  map[string]*models.LearnedPattern
	incidents []models.Incident
}

// NewState returns empty learner state.
func NewState() *State {
	return &State{
		baselines: make(map[string]models.Baseline),
		patterns:  make(map[string]*models.LearnedPattern),
	}
}

// ReplaceBaselines swaps in a fully built baseline map. Readers never observe
// a partial update.
func (s *State) ReplaceBaselines(baselines map[string]models.Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines = baselines
}

// Baseline returns the baseline for a metric, if one exists.
func (s *State) Baseline(metric string) (models.Baseline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.baselines[metric]
	return b, ok
}

// Baselines returns a copy of the current baseline map.
func (s *State) Baselines() map[string]models.Baseline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Baseline, len(s.baselines))
	for k, v := range s.baselines {
		out[k] = v
	}
	return out
}

// RecordIncident appends an incident and reinforces the pattern keyed by its
// canonical symptom set. Returns the pattern after the update.
func (s *State) RecordIncident(incident models.Incident, key string) models.LearnedPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incidents = append(s.incidents, incident)

	if existing, ok := s.patterns[key]; ok {
		existing.Occurrences++
		existing.Confidence += confidenceStep
		return *existing
	}

	created := &models.LearnedPattern{
		Symptoms:    append([]string(nil), incident.Symptoms...),
		RootCause:   incident.RootCause,
		Solution:    incident.Solution,
		Occurrences: 1,
		Confidence:  initialConfidence,
	}
	s.patterns[key] = created
	return *created
}

// Patterns returns a copy of the learned pattern map.
func (s *State) Patterns() map[string]models.LearnedPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.LearnedPattern, len(s.patterns))
	for k, v := range s.patterns {
		out[k] = *v
	}
	return out
}

// Incidents returns a copy of the incident history in record order.
func (s *State) Incidents() []models.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Incident(nil), s.incidents...)
}

// PatternCount returns the number of distinct learned patterns.
func (s *State) PatternCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// Restore loads previously persisted learner state wholesale. Used at process
// start when a trained model file is present; the file is advisory and a fresh
// process may equally start empty and replay training.
func (s *State) Restore(baselines map[string]models.Baseline, patterns map[string]models.LearnedPattern, incidents []models.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baselines = make(map[string]models.Baseline, len(baselines))
	for k, v := range baselines {
		s.baselines[k] = v
	}
	s.patterns = make(map[string]*models.LearnedPattern, len(patterns))
	for k, v := range patterns {
		p := v
		s.patterns[k] = &p
	}
	s.incidents = append([]models.Incident(nil), incidents...)
}

// snapshotTime is split out so tests can pin the capture timestamp.
func snapshotTime(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts
}
