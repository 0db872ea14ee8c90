package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CarrierErrors    *prometheus.CounterVec
	SessionExchanges *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics returns the process-wide Prometheus metrics, registering them on
// first use. Collectors live in the default registry, so registration happens
// exactly once.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freightflow_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freightflow_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freightflow_carrier_errors_total",
				Help: "Total carrier rate failures by carrier and error type",
			},
			[]string{"carrier", "error_type"},
		),
		SessionExchanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freightflow_session_exchanges_total",
				Help: "Platform token exchange outcomes",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordCarrierError records a carrier failure metric.
func (m *Metrics) RecordCarrierError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordExchange records a token exchange outcome.
func (m *Metrics) RecordExchange(outcome string) {
	m.SessionExchanges.WithLabelValues(outcome).Inc()
}
