package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/observastack/intel-engine/internal/config"
	"github.com/observastack/intel-engine/internal/knowledge"
	"github.com/observastack/intel-engine/internal/learner"
	"github.com/observastack/intel-engine/internal/models"
	"github.com/observastack/intel-engine/internal/services"
	"github.com/observastack/intel-engine/internal/utils"
)

// intel-trainer runs an offline training pass and writes the model artifact
// the engine restores at boot. Without input files it trains on generated
// sample data so a fresh environment gets a usable model.
func main() {
	var (
		configPath    string
		incidentsPath string
		metricsPath   string
		outPath       string
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&incidentsPath, "incidents", "", "Path to JSON incident history")
	flag.StringVar(&metricsPath, "metrics", "", "Path to JSON metrics history")
	flag.StringVar(&outPath, "out", "", "Model output path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}
	if outPath == "" {
		outPath = cfg.Model.Path
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	kb, err := knowledge.NewFromFile(cfg.Knowledge.CatalogPath)
	if err != nil {
		logger.Error("failed to load knowledge catalog", slog.Any("error", err))
		os.Exit(1)
	}

	incidents, err := loadOrGenerateIncidents(incidentsPath, logger)
	if err != nil {
		logger.Error("failed to load incidents", slog.Any("error", err))
		os.Exit(1)
	}

	history, err := loadOrGenerateHistory(metricsPath, logger)
	if err != nil {
		logger.Error("failed to load metrics history", slog.Any("error", err))
		os.Exit(1)
	}

	service := services.NewIntelService(kb, learner.NewState(), services.Options{Logger: logger})

	stats, err := service.Train(context.Background(), history, incidents)
	if err != nil {
		logger.Error("training failed", slog.Any("error", err))
		os.Exit(1)
	}

	model := service.Snapshot(stats)
	for metric, baseline := range model.Baselines {
		logger.Info("baseline learned",
			slog.String("metric", metric),
			slog.Float64("median", baseline.Median),
			slog.String("normal_range", baseline.NormalRange))
	}
	for key, pattern := range model.LearnedPatterns {
		logger.Info("pattern learned",
			slog.String("pattern", key),
			slog.String("root_cause", pattern.RootCause),
			slog.Float64("confidence", pattern.Confidence))
	}

	if err := learner.SaveModel(outPath, model); err != nil {
		logger.Error("failed to save model", slog.String("path", outPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("model saved",
		slog.String("path", outPath),
		slog.Int("incidents", stats.IncidentsProcessed),
		slog.Int("metric_samples", stats.MetricsSamples),
		slog.Int("patterns", stats.PatternsLearned))
}

func loadOrGenerateIncidents(path string, logger *slog.Logger) ([]models.Incident, error) {
	if path == "" {
		incidents := sampleIncidents()
		logger.Info("generated sample incidents", slog.Int("count", len(incidents)))
		return incidents, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewAppError("trainer.loadIncidents", "read incident history", err)
	}
	var incidents []models.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, utils.NewAppError("trainer.loadIncidents", "parse incident history", err)
	}
	logger.Info("loaded incidents", slog.String("path", path), slog.Int("count", len(incidents)))
	return incidents, nil
}

func loadOrGenerateHistory(path string, logger *slog.Logger) ([]map[string]float64, error) {
	if path == "" {
		history := sampleHistory()
		logger.Info("generated sample metrics history", slog.Int("samples", len(history)))
		return history, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewAppError("trainer.loadHistory", "read metrics history", err)
	}

	// Exported histories often carry non-numeric fields (timestamps, labels);
	// only numeric values feed baseline learning.
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, utils.NewAppError("trainer.loadHistory", "parse metrics history", err)
	}
	history := make([]map[string]float64, 0, len(raw))
	for _, sample := range raw {
		numeric := make(map[string]float64, len(sample))
		for key, value := range sample {
			if v, ok := value.(float64); ok {
				numeric[key] = v
			}
		}
		history = append(history, numeric)
	}
	logger.Info("loaded metrics history", slog.String("path", path), slog.Int("samples", len(history)))
	return history, nil
}

func sampleIncidents() []models.Incident {
	return []models.Incident{
		{
			Symptoms:  []string{"high_cpu", "slow_response", "user_complaints"},
			Metrics:   map[string]float64{"cpu": 92, "memory": 78, "latency": 3200, "error_rate": 2.1},
			RootCause: "Inefficient query causing CPU spike during peak hours",
			Solution:  "Optimized database query and added proper indexing",
			Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			Symptoms:  []string{"memory_climb", "frequent_restarts", "oom_errors"},
			Metrics:   map[string]float64{"cpu": 45, "memory": 95, "latency": 1200, "error_rate": 8.5},
			RootCause: "Unclosed HTTP connections in payment processing",
			Solution:  "Fixed connection cleanup in finally blocks",
			Timestamp: time.Date(2024, 1, 20, 14, 15, 0, 0, time.UTC),
		},
		{
			Symptoms:  []string{"connection_timeouts", "database_errors", "slow_queries"},
			Metrics:   map[string]float64{"cpu": 55, "memory": 70, "latency": 5000, "error_rate": 12.3, "db_connections": 500},
			RootCause: "Sudden traffic spike exceeded database connection limit",
			Solution:  "Increased connection pool size and optimized pooling",
			Timestamp: time.Date(2024, 1, 25, 9, 45, 0, 0, time.UTC),
		},
		{
			Symptoms:  []string{"error_spike", "timeout_increase", "service_degradation"},
			Metrics:   map[string]float64{"cpu": 25, "memory": 55, "latency": 8000, "error_rate": 25.8},
			RootCause: "Upstream authentication service failure caused timeouts across all services",
			Solution:  "Implemented circuit breaker pattern and fallback mechanisms",
			Timestamp: time.Date(2024, 2, 1, 16, 20, 0, 0, time.UTC),
		},
	}
}

// sampleHistory simulates 30 days of hourly metrics with business-hours load
// shaping so learned baselines resemble a real environment.
func sampleHistory() []map[string]float64 {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)

	history := make([]map[string]float64, 0, 30*24)
	for i := 0; i < 30*24; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		hour := ts.Hour()
		busy := hour >= 9 && hour <= 17 && ts.Weekday() != time.Saturday && ts.Weekday() != time.Sunday

		baseCPU, baseMemory, baseLatency, baseErrorRate := 25.0, 40.0, 80.0, 0.1
		if busy {
			baseCPU, baseMemory, baseLatency, baseErrorRate = 45.0, 60.0, 150.0, 0.5
		}

		history = append(history, map[string]float64{
			"cpu":        clamp(baseCPU+float64(rng.Intn(31)-15), 10, 95),
			"memory":     clamp(baseMemory+float64(rng.Intn(21)-10), 20, 90),
			"latency":    clamp(baseLatency+float64(rng.Intn(151)-50), 50, 3000),
			"error_rate": clamp(baseErrorRate+rng.Float64()*1.1-0.3, 0, 10),
		})
	}
	return history
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
