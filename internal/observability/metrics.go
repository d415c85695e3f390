package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_surrogate"

// Metrics holds the Prometheus collectors for training and inference.
type Metrics struct {
	// Training metrics.
	ScenariosGenerated *prometheus.CounterVec   // labels: domain
	TrainingRuns       *prometheus.CounterVec   // labels: domain, outcome={success,error,rejected}
	TrainingDuration   *prometheus.HistogramVec // labels: domain
	ValidationMAE      *prometheus.GaugeVec     // labels: domain
	ValidationR2       *prometheus.GaugeVec     // labels: domain
	EventsPublished    *prometheus.CounterVec   // labels: outcome={success,error}

	// Inference metrics.
	ModelsLoaded       prometheus.Gauge
	ModelLoadErrors    *prometheus.CounterVec   // labels: domain
	Predictions        *prometheus.CounterVec   // labels: domain, outcome={success,error}
	PredictionDuration *prometheus.HistogramVec // labels: domain
	PredictionCache    *prometheus.CounterVec   // labels: domain, result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ScenariosGenerated,
		m.TrainingRuns,
		m.TrainingDuration,
		m.ValidationMAE,
		m.ValidationR2,
		m.EventsPublished,
		m.ModelsLoaded,
		m.ModelLoadErrors,
		m.Predictions,
		m.PredictionDuration,
		m.PredictionCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ScenariosGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_generated_total",
			Help:      "Synthetic scenarios generated for training, by domain.",
		}, []string{"domain"}),
		TrainingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Surrogate training runs by domain and outcome.",
		}, []string{"domain", "outcome"}),
		TrainingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_duration_seconds",
			Help:      "Wall time to fit and score one surrogate.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"domain"}),
		ValidationMAE: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_mae",
			Help:      "Held-out mean absolute error of the latest model, in target units.",
		}, []string{"domain"}),
		ValidationR2: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_r2",
			Help:      "Held-out coefficient of determination of the latest model.",
		}, []string{"domain"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_events_published_total",
			Help:      "Model-published events sent to Kafka, by outcome.",
		}, []string{"outcome"}),
		ModelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_loaded",
			Help:      "Number of surrogate models currently loaded.",
		}),
		ModelLoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_load_errors_total",
			Help:      "Artifacts that could not be loaded, by domain.",
		}, []string{"domain"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Surrogate predictions by domain and outcome.",
		}, []string{"domain", "outcome"}),
		PredictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Latency of a single surrogate prediction.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"domain"}),
		PredictionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_total",
			Help:      "Prediction cache lookups by domain and result.",
		}, []string{"domain", "result"}),
	}
}
