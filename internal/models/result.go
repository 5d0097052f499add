package models

import "time"

// Match is one candidate explanation produced by the pattern matcher.
type Match struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Symptoms   []string `json:"symptoms"`
	RootCause  string   `json:"root_cause"`
	Solutions  []string `json:"solutions"`
	Prevention []string `json:"prevention"`
	Learned    bool     `json:"learned"`
}

// PatternSummary is the compact per-pattern view surfaced in the analysis.
type PatternSummary struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	RootCause  string  `json:"root_cause"`
}

// Analysis carries the primary explanation. Status is set only on the
// generic fallback response when no pattern clears its threshold.
type Analysis struct {
	DetectedPatterns []PatternSummary `json:"detected_patterns,omitempty"`
	PrimaryRootCause string           `json:"primary_root_cause,omitempty"`
	Confidence       float64          `json:"confidence"`
	Status           string           `json:"status,omitempty"`
}

// TimeContext situates the analysis in wall-clock terms for downstream callers.
type TimeContext struct {
	CurrentTime     time.Time `json:"current_time"`
	HourOfDay       int       `json:"hour_of_day"`
	DayOfWeek       int       `json:"day_of_week"`
	IsBusinessHours bool      `json:"is_business_hours"`
	IsWeekend       bool      `json:"is_weekend"`
}

// Context is the situational metadata built alongside pattern matching.
type Context struct {
	CurrentState      map[string]string `json:"current_state"`
	Trends            map[string]string `json:"trends"`
	Correlations      []string          `json:"correlations"`
	Severity          string            `json:"severity"`
	TimeContext       TimeContext       `json:"time_context"`
	EnvironmentHealth string            `json:"environment_health"`
}

// AnalysisResult merges matcher output and context into the final response.
type AnalysisResult struct {
	AnalysisID                string    `json:"analysis_id"`
	Analysis                  Analysis  `json:"analysis"`
	Context                   Context   `json:"context"`
	ImmediateActions          []string  `json:"immediate_actions,omitempty"`
	DetailedSolutions         []string  `json:"detailed_solutions,omitempty"`
	PreventionStrategies      []string  `json:"prevention_strategies,omitempty"`
	MonitoringRecommendations []string  `json:"monitoring_recommendations,omitempty"`
	RelatedPatterns           []string  `json:"related_patterns,omitempty"`
	GeneralRecommendations    []string  `json:"general_recommendations,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
}
