package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/observastack/intel-engine/internal/cache"
	"github.com/observastack/intel-engine/internal/engine"
	"github.com/observastack/intel-engine/internal/knowledge"
	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/metrics"
	"github.com/observastack/intel-engine/internal/models"
	"github.com/observastack/intel-engine/internal/utils"
)

// IntelService coordinates pattern matching, context building, learning and
// result caching behind a single analysis entry point.
type IntelService struct {
	kb        *knowledge.Base
	state     *learner.State
	matcher   *engine.PatternMatcher
	builder   *engine.ContextBuilder
	assembler *engine.Assembler
	baselines *learner.BaselineLearner
	incidents *learner.IncidentLearner
	cache     cache.Provider
	cacheTTL  time.Duration
	latency   *utils.LatencyTracker
	logger    *slog.Logger
}

// Options configures optional service collaborators.
type Options struct {
	Cache    cache.Provider
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NewIntelService wires the analysis pipeline over a knowledge base and
// shared learner state.
func NewIntelService(kb *knowledge.Base, state *learner.State, opts Options) *IntelService {
	if kb == nil {
		kb = knowledge.New()
	}
	if state == nil {
		state = learner.NewState()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	provider := opts.Cache
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &IntelService{
		kb:        kb,
		state:     state,
		matcher:   engine.NewPatternMatcher(kb, state, logger),
		builder:   engine.NewContextBuilder(state),
		assembler: engine.NewAssembler(),
		baselines: learner.NewBaselineLearner(state, logger),
		incidents: learner.NewIncidentLearner(state, logger),
		cache:     provider,
		cacheTTL:  ttl,
		latency:   utils.NewLatencyTracker(256),
		logger:    logger,
	}
}

// Analyze runs the full pipeline for one telemetry snapshot. Identical
// snapshots within the cache TTL return the cached result, including its
// original analysis ID.
func (s *IntelService) Analyze(ctx context.Context, snapshot models.TelemetrySnapshot) (models.AnalysisResult, error) {
	start := time.Now()

	key, err := analysisCacheKey(snapshot)
	if err != nil {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeError, 0)
		return models.AnalysisResult{}, fmt.Errorf("compute cache key: %w", err)
	}

	if cached, ok := s.cachedResult(ctx, key); ok {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeSuccess, len(cached.Analysis.DetectedPatterns))
		s.logger.Debug("analysis served from cache", slog.String("analysis_id", cached.AnalysisID))
		return cached, nil
	}

	matches := s.matcher.DetectPatterns(snapshot)
	situational := s.builder.BuildContext(snapshot)
	result := s.assembler.Assemble(matches, situational)

	s.storeResult(ctx, key, result)

	elapsed := time.Since(start)
	metrics.ObserveAnalysis(elapsed, metrics.OutcomeSuccess, len(matches))
	s.observeLatency(elapsed)

	s.logger.Info("analysis completed",
		slog.String("analysis_id", result.AnalysisID),
		slog.Int("matches", len(matches)),
		slog.String("severity", situational.Severity),
		slog.Duration("took", elapsed))
	return result, nil
}

// Train runs a full offline training pass: baselines from metric history and
// patterns from resolved incidents. The returned stats describe this pass.
func (s *IntelService) Train(ctx context.Context, history []map[string]float64, incidents []models.Incident) (models.TrainingStats, error) {
	if err := ctx.Err(); err != nil {
		return models.TrainingStats{}, err
	}

	s.baselines.LearnBaselines(history)
	patterns := s.incidents.LearnFromIncidents(incidents)

	stats := models.TrainingStats{
		IncidentsProcessed: len(incidents),
		MetricsSamples:     len(history),
		PatternsLearned:    patterns,
	}

	metrics.ObserveTraining()
	s.logger.Info("training pass completed",
		slog.Int("incidents", stats.IncidentsProcessed),
		slog.Int("metric_samples", stats.MetricsSamples),
		slog.Int("patterns", stats.PatternsLearned))
	return stats, nil
}

// IsAnomaly exposes baseline anomaly classification for one metric value.
func (s *IntelService) IsAnomaly(metric string, value float64) bool {
	return s.baselines.IsAnomaly(metric, value)
}

// Snapshot captures current learner state as a persistable model.
func (s *IntelService) Snapshot(stats models.TrainingStats) learner.Model {
	return s.state.Snapshot(s.kb.Domain(), stats)
}

// Restore replays a previously saved model into learner state.
func (s *IntelService) Restore(model learner.Model) {
	s.state.Restore(model.Baselines, model.LearnedPatterns, model.IncidentHistory)
}

func (s *IntelService) cachedResult(ctx context.Context, key string) (models.AnalysisResult, bool) {
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get failed", slog.String("error", err.Error()))
		}
		return models.AnalysisResult{}, false
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("cache entry corrupt, discarding", slog.String("key", key))
		_ = s.cache.Del(ctx, key)
		return models.AnalysisResult{}, false
	}
	return result, true
}

func (s *IntelService) storeResult(ctx context.Context, key string, result models.AnalysisResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("cache encode failed", slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", slog.String("error", err.Error()))
	}
}

func (s *IntelService) observeLatency(d time.Duration) {
	s.latency.Observe(d)
	count := s.latency.Count()
	if count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p50", s.latency.Percentile(50)),
			slog.Duration("p95", s.latency.Percentile(95)),
			slog.Int("samples", count))
	}
}

// analysisCacheKey hashes the canonical JSON encoding of the snapshot so
// semantically identical requests share one cache entry.
func analysisCacheKey(snapshot models.TelemetrySnapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return "intel:analysis:" + hex.EncodeToString(sum[:]), nil
}
