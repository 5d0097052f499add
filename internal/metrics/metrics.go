package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels successful analyses.
	OutcomeSuccess = "success"
	// OutcomeError labels failed analyses.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intel_engine",
			Name:      "analyses_total",
			Help:      "Total number of analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "intel_engine",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	patternsDetected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "intel_engine",
			Name:      "patterns_detected",
			Help:      "Number of candidate patterns per analysis.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8},
		},
	)

	trainingRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "intel_engine",
			Name:      "training_runs_total",
			Help:      "Total number of offline training passes.",
		},
	)
)

// Register attaches intel-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		patternsDetected,
		trainingRunsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records one analysis duration, outcome and match count.
func ObserveAnalysis(duration time.Duration, outcome string, matches int) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
	patternsDetected.Observe(float64(matches))
}

// ObserveTraining counts an offline training pass.
func ObserveTraining() {
	trainingRunsTotal.Inc()
}
