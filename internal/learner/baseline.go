package learner

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/observastack/intel-engine/internal/models"
)

// anomalyMultiplier is a policy constant: values beyond p95 * 1.5 are anomalous.
const anomalyMultiplier = 1.5

// trackedMetrics is the fixed set baselines are learned for. Callers always
// receive a baseline for each of these, falling back to defaults when a metric
// has no observations.
var trackedMetrics = []string{"cpu", "memory", "latency", "error_rate"}

// BaselineLearner computes per-metric statistical baselines from historical
// samples and classifies anomalies against them.
type BaselineLearner struct {
	state  *State
	logger *slog.Logger
}

// NewBaselineLearner constructs a BaselineLearner over shared learner state.
func NewBaselineLearner(state *State, logger *slog.Logger) *BaselineLearner {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaselineLearner{state: state, logger: logger}
}

// LearnBaselines computes nearest-rank percentile baselines for every tracked
// metric from the supplied history and atomically replaces the previous map.
// Metrics with zero observations (including an empty history) receive their
// built-in default baseline so callers always get a complete map.
func (l *BaselineLearner) LearnBaselines(history []map[string]float64) map[string]models.Baseline {
	defaults := DefaultBaselines()
	baselines := make(map[string]models.Baseline, len(trackedMetrics))

	for _, metric := range trackedMetrics {
		values := make([]float64, 0, len(history))
		for _, sample := range history {
			if v, ok := sample[metric]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			baselines[metric] = defaults[metric]
			continue
		}
		baselines[metric] = models.Baseline{
			Median:      percentile(values, 50),
			P95:         percentile(values, 95),
			P99:         percentile(values, 99),
			NormalRange: fmt.Sprintf("%g-%g", percentile(values, 10), percentile(values, 90)),
			Learned:     true,
		}
	}

	l.state.ReplaceBaselines(baselines)
	l.logger.Debug("baselines replaced", slog.Int("samples", len(history)), slog.Int("metrics", len(baselines)))
	return baselines
}

// IsAnomaly reports whether a value exceeds the learned p95 by the anomaly
// multiplier. Unknown metrics and built-in default baselines are never
// flagged. A learned p95 of zero flags any positive value.
func (l *BaselineLearner) IsAnomaly(metric string, value float64) bool {
	baseline, ok := l.state.Baseline(metric)
	if !ok || !baseline.Learned {
		return false
	}
	return value > baseline.P95*anomalyMultiplier
}

// DefaultBaselines returns the built-in baseline set used when no historical
// data is available. Defaults are not marked learned, so anomaly checks never
// fire against them.
func DefaultBaselines() map[string]models.Baseline {
	return map[string]models.Baseline{
		"cpu":        {Median: 40, NormalRange: "20-60%"},
		"memory":     {Median: 50, NormalRange: "30-70%"},
		"latency":    {Median: 100, NormalRange: "50-200ms"},
		"error_rate": {Median: 0.1, NormalRange: "0-1%"},
	}
}

// percentile computes the deterministic nearest-rank percentile: sort
// ascending, index = floor(count * p / 100), clamped to the last element.
func percentile(values []float64, p int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	index := len(sorted) * p / 100
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
