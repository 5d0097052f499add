package engine

import (
	"strings"
	"time"

	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/models"
)

// ContextBuilder derives situational metadata from a snapshot and the
// learner's baseline state. Independent of pattern matching.
type ContextBuilder struct {
	state *learner.State
	now   func() time.Time
}

// NewContextBuilder constructs a ContextBuilder over shared learner state.
func NewContextBuilder(state *learner.State) *ContextBuilder {
	if state == nil {
		state = learner.NewState()
	}
	return &ContextBuilder{state: state, now: time.Now}
}

// BuildContext assembles the full situational context for one snapshot.
func (c *ContextBuilder) BuildContext(snapshot models.TelemetrySnapshot) models.Context {
	baselines := c.state.Baselines()
	return models.Context{
		CurrentState:      currentState(snapshot.Metrics, baselines),
		Trends:            trends(snapshot.Metrics, baselines),
		Correlations:      correlations(snapshot),
		Severity:          severity(snapshot.Metrics),
		TimeContext:       c.timeContext(),
		EnvironmentHealth: environmentHealth(snapshot),
	}
}

// currentState classifies every input metric against its baseline median.
// Metrics without a baseline are marked distinctly rather than skipped.
func currentState(metrics map[string]float64, baselines map[string]models.Baseline) map[string]string {
	state := make(map[string]string, len(metrics))
	for metric, value := range metrics {
		baseline, ok := baselines[metric]
		if !ok {
			state[metric] = "unknown_baseline"
			continue
		}
		switch {
		case value > baseline.Median*1.5:
			state[metric] = "significantly_above_normal"
		case value > baseline.Median*1.2:
			state[metric] = "above_normal"
		case value < baseline.Median*0.8:
			state[metric] = "below_normal"
		default:
			state[metric] = "normal"
		}
	}
	return state
}

// trends classifies each input metric's direction relative to its baseline
// median; a point-in-time proxy until series history is wired in.
func trends(metrics map[string]float64, baselines map[string]models.Baseline) map[string]string {
	out := make(map[string]string, len(metrics))
	for metric, value := range metrics {
		baseline, ok := baselines[metric]
		if !ok {
			out[metric] = "unknown"
			continue
		}
		switch {
		case value > baseline.Median*1.2:
			out[metric] = "rising"
		case value < baseline.Median*0.8:
			out[metric] = "falling"
		default:
			out[metric] = "stable"
		}
	}
	return out
}

// severityMetrics is the fixed set severity counting is restricted to.
var severityMetrics = []string{"cpu", "memory", "latency", "error_rate"}

func severity(metrics map[string]float64) string {
	critical := 0
	warning := 0
	for _, metric := range severityMetrics {
		value, ok := metrics[metric]
		if !ok {
			continue
		}
		if value > 90 {
			critical++
		} else if value > 70 {
			warning++
		}
	}
	switch {
	case critical > 0:
		return "critical"
	case warning > 2:
		return "warning"
	default:
		return "normal"
	}
}

// environmentHealth scores 100 minus fixed deductions. Deductions can overlap
// so the score is not floored at zero before banding.
func environmentHealth(snapshot models.TelemetrySnapshot) string {
	score := 100
	if snapshot.Metric("cpu") > 80 {
		score -= 30
	}
	if snapshot.Metric("memory") > 80 {
		score -= 30
	}
	if snapshot.Metric("error_rate") > 5 {
		score -= 40
	}

	switch {
	case score >= 80:
		return "healthy"
	case score >= 60:
		return "degraded"
	default:
		return "unhealthy"
	}
}

func correlations(snapshot models.TelemetrySnapshot) []string {
	notes := make([]string, 0, 3)

	if snapshot.Metric("cpu") > 80 && snapshot.Metric("memory") > 80 {
		notes = append(notes, "High CPU and memory usage correlation detected")
	}
	if snapshot.Metric("error_rate") > 5 && snapshot.Metric("latency") > 2000 {
		notes = append(notes, "Error rate and latency correlation detected")
	}

	errorLines := 0
	for _, line := range snapshot.Logs {
		if strings.Contains(strings.ToLower(line), "error") {
			errorLines++
		}
	}
	if errorLines > 5 && snapshot.Metric("latency") > 1000 {
		notes = append(notes, "Error logs correlate with high latency")
	}

	return notes
}

func (c *ContextBuilder) timeContext() models.TimeContext {
	now := c.now().UTC()
	hour := now.Hour()
	weekday := int(now.Weekday())
	return models.TimeContext{
		CurrentTime:     now,
		HourOfDay:       hour,
		DayOfWeek:       weekday,
		IsBusinessHours: hour >= 9 && hour <= 17,
		IsWeekend:       now.Weekday() == time.Saturday || now.Weekday() == time.Sunday,
	}
}
