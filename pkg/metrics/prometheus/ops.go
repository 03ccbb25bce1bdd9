// Package prometheus provides Prometheus-backed implementations of the
// metrics interfaces.
package prometheus

import (
	"time"

	"github.com/marmos91/datavault/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// opsMetrics is the Prometheus implementation of metrics.OpsMetrics.
type opsMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
}

// NewOpsMetrics creates a new Prometheus-backed OpsMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewOpsMetrics() metrics.OpsMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &opsMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "datavault_operations_total",
				Help: "Total number of data operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "datavault_operation_duration_milliseconds",
				Help: "Duration of data operations in milliseconds",
				Buckets: []float64{
					5,     // 5ms - single validation round trip
					25,    // 25ms
					100,   // 100ms - small listings
					500,   // 500ms
					1000,  // 1s - deep ancestor walks
					5000,  // 5s - recursive permission rewrites
					15000, // 15s - large batch moves
				},
			},
			[]string{"operation"},
		),
		validationFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "datavault_validation_failures_total",
				Help: "Total number of validation-gate rejections by operation and condition code",
			},
			[]string{"operation", "code"},
		),
	}
}

// RecordOperation records a completed operation.
func (m *opsMetrics) RecordOperation(op string, duration time.Duration, errorCode string) {
	status := "ok"
	if errorCode != "" {
		status = errorCode
	}

	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(duration.Microseconds()) / 1000.0)
}

// RecordValidationFailure counts one validation-gate rejection.
func (m *opsMetrics) RecordValidationFailure(op string, code string) {
	m.validationFailures.WithLabelValues(op, code).Inc()
}
