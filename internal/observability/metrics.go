package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solar_forecast"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset metrics.
	DatasetRows          *prometheus.GaugeVec // labels: state={kept,dropped,undated}
	MeasurementsAppended prometheus.Counter
	ValidationFailures   prometheus.Counter

	// Training metrics.
	TrainingDuration prometheus.Histogram
	ModelR2          *prometheus.GaugeVec // labels: interval, target
	ModelMAE         *prometheus.GaugeVec // labels: interval, target
	ModelsReady      prometheus.Gauge

	// Prediction metrics.
	Predictions        *prometheus.CounterVec   // labels: interval, outcome={success,error}
	PredictionDuration *prometheus.HistogramVec // labels: interval
	ForecastCache      *prometheus.CounterVec   // labels: result={hit,miss}

	// Publishing metrics.
	KafkaPublishes *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows read from the dataset at startup by cleaning outcome.",
		}, []string{"state"}),
		MeasurementsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_appended_total",
			Help:      "Measurements appended to the dataset through the add form.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Submitted measurements rejected by input validation.",
		}),
		TrainingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_duration_seconds",
			Help:      "Duration of the startup training run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ModelR2: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_r2",
			Help:      "Held-out R squared per trained model.",
		}, []string{"interval", "target"}),
		ModelMAE: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_mae",
			Help:      "Held-out mean absolute error per trained model.",
		}, []string{"interval", "target"}),
		ModelsReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_ready",
			Help:      "1 once the trained models are installed, 0 otherwise.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by interval and outcome.",
		}, []string{"interval", "outcome"}),
		PredictionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time to compute a prediction result, including charts.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"interval"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      "Forecast memo lookups by result.",
		}, []string{"result"}),
		KafkaPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publishes_total",
			Help:      "Measurement publishes to Kafka by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.DatasetRows,
		m.MeasurementsAppended,
		m.ValidationFailures,
		m.TrainingDuration,
		m.ModelR2,
		m.ModelMAE,
		m.ModelsReady,
		m.Predictions,
		m.PredictionDuration,
		m.ForecastCache,
		m.KafkaPublishes,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetRows:          prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "dataset_rows"}, []string{"state"}),
		MeasurementsAppended: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "measurements_appended_total"}),
		ValidationFailures:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "validation_failures_total"}),
		TrainingDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "training_duration_seconds"}),
		ModelR2:              prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "model_r2"}, []string{"interval", "target"}),
		ModelMAE:             prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "model_mae"}, []string{"interval", "target"}),
		ModelsReady:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "models_ready"}),
		Predictions:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "predictions_total"}, []string{"interval", "outcome"}),
		PredictionDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "prediction_duration_seconds"}, []string{"interval"}),
		ForecastCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "forecast_cache_total"}, []string{"result"}),
		KafkaPublishes:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "kafka_publishes_total"}, []string{"outcome"}),
	}
}
