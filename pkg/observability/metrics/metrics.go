// Package metrics exposes assessment counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "healthlab"

// Operation names used as the "operation" label.
const (
	OpRiskScore       = "risk_score"
	OpDatasetStage    = "dataset_stage"
	OpDatasetAnalysis = "dataset_analysis"
	OpTextClassify    = "text_classify"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	riskBands      *prometheus.CounterVec
	stagedDatasets prometheus.Gauge
	auditedEvents  *prometheus.CounterVec
}

// New uses a fresh registry of its own.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers every collector on registry, which also serves Handler.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Assessment operations by operation and outcome kind.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent in each assessment operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		riskBands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_band_total",
			Help:      "Risk scores by band.",
		}, []string{"band"}),
		stagedDatasets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "staged_datasets",
			Help:      "Datasets currently held in upload staging.",
		}),
		auditedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audited_events_total",
			Help:      "Assessment events written to the audit log, by event type.",
		}, []string{"type"}),
	}

	registry.MustRegister(m.operations, m.duration, m.riskBands, m.stagedDatasets, m.auditedEvents)
	return m
}

// Observe records one operation. outcome is "ok" or an outcome kind.
func (m *Metrics) Observe(operation, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRiskBand(band string) {
	m.riskBands.WithLabelValues(band).Inc()
}

func (m *Metrics) SetStagedDatasets(n int) {
	m.stagedDatasets.Set(float64(n))
}

func (m *Metrics) ObserveAudited(eventType string) {
	m.auditedEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
