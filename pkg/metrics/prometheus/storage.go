package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/metrics"
)

// storageMetrics is the Prometheus implementation of storage.Metrics.
type storageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// NewStorageMetrics creates the backend collectors on the active registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStorageMetrics() *storageMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storageMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fms_storage_operations_total",
				Help: "Total number of storage backend calls by backend, operation and error code",
			},
			[]string{"backend", "operation", "code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fms_storage_operation_duration_milliseconds",
				Help: "Duration of storage backend calls in milliseconds",
				Buckets: []float64{
					1,     // local filesystem
					10,    // local filesystem under load
					50,    // S3 metadata calls
					100,   // S3 small objects
					500,   // S3 copies
					1000,  // S3 large objects
					5000,  // prefix moves
					30000, // storage timeout
				},
			},
			[]string{"backend", "operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fms_storage_bytes_written_total",
				Help: "Total bytes written to the storage backend",
			},
			[]string{"backend", "operation"},
		),
	}
}

func (m *storageMetrics) ObserveOperation(backend, op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(backend, op, codeLabel(err)).Inc()
	m.operationDuration.WithLabelValues(backend, op).Observe(duration.Seconds() * 1000)
}

func (m *storageMetrics) RecordBytes(backend, op string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(backend, op).Add(float64(n))
}
