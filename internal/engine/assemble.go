package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/observastack/intel-engine/internal/models"
)

// fallbackConfidence labels the generic response when nothing matched.
const fallbackConfidence = 0.3

// Assembler merges matcher output and context into the final result.
type Assembler struct{}

// NewAssembler constructs an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble builds the structured response. The highest-confidence match is
// the primary explanation; if nothing matched, a generic fallback with fixed
// recommendations is returned instead of an empty result.
func (a *Assembler) Assemble(matches []models.Match, ctx models.Context) models.AnalysisResult {
	result := models.AnalysisResult{
		AnalysisID: uuid.NewString(),
		Context:    ctx,
		CreatedAt:  time.Now().UTC(),
	}

	if len(matches) == 0 {
		result.Analysis = models.Analysis{
			Status:     "No specific patterns detected",
			Confidence: fallbackConfidence,
		}
		result.GeneralRecommendations = generalRecommendations()
		return result
	}

	primary := matches[0]

	summaries := make([]models.PatternSummary, 0, 3)
	for _, match := range matches {
		if len(summaries) == 3 {
			break
		}
		summaries = append(summaries, models.PatternSummary{
			Name:       match.Name,
			Confidence: match.Confidence,
			RootCause:  match.RootCause,
		})
	}

	result.Analysis = models.Analysis{
		DetectedPatterns: summaries,
		PrimaryRootCause: primary.RootCause,
		Confidence:       primary.Confidence,
	}
	result.ImmediateActions = headOf(primary.Solutions, 3)
	result.DetailedSolutions = primary.Solutions
	result.PreventionStrategies = primary.Prevention
	result.MonitoringRecommendations = monitoringRecommendations(primary.Name)

	for _, match := range matches[1:] {
		if len(result.RelatedPatterns) == 2 {
			break
		}
		result.RelatedPatterns = append(result.RelatedPatterns, match.Name)
	}

	return result
}

// monitoringRecommendations is a side lookup keyed by substring membership in
// the winning signature's name. Names matching none contribute nothing.
func monitoringRecommendations(name string) []string {
	recs := make([]string, 0, 9)
	lowered := strings.ToLower(name)

	if strings.Contains(lowered, "memory") {
		recs = append(recs,
			"Set memory usage alerts at 85% threshold",
			"Monitor GC frequency and duration",
			"Track heap dump generation triggers",
		)
	}
	if strings.Contains(lowered, "database") {
		recs = append(recs,
			"Monitor database connection pool utilization",
			"Set alerts for slow query detection",
			"Track database lock wait times",
		)
	}
	if strings.Contains(lowered, "cpu") {
		recs = append(recs,
			"Monitor CPU usage trends",
			"Set alerts for sustained high CPU",
			"Track thread pool utilization",
		)
	}
	return recs
}

func generalRecommendations() []string {
	return []string{
		"Check recent deployments and changes",
		"Review service dependencies",
		"Analyze trends over longer time periods",
		"Verify monitoring and alerting coverage",
	}
}

func headOf(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
