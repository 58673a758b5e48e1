package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "strokeguard"

// Metrics implements assessment.Recorder on top of a Prometheus registry.
type Metrics struct {
	registry    *prometheus.Registry
	assessments *prometheus.CounterVec
	failures    *prometheus.CounterVec
	prediction  prometheus.Histogram
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed stroke risk assessments by category.",
		}, []string{"category"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_failures_total",
			Help:      "Assessments that produced no result, by failing stage.",
		}, []string{"reason"}),
		prediction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in the model collaborator per assessment.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}

	reg.MustRegister(
		m.assessments,
		m.failures,
		m.prediction,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) AssessmentCompleted(category string) {
	m.assessments.WithLabelValues(category).Inc()
}

func (m *Metrics) AssessmentFailed(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) PredictionObserved(d time.Duration) {
	m.prediction.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
