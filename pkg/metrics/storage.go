package metrics

import (
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
)

// NewStorageMetrics creates a Prometheus-backed storage.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// storage.Instrument accepts nil and then only emits spans.
//
// Example usage:
//
//	metrics.InitRegistry()
//	backend = storage.Instrument(backend, metrics.NewStorageMetrics())
func NewStorageMetrics() storage.Metrics {
	if !IsEnabled() || newPrometheusStorageMetrics == nil {
		return nil
	}
	return newPrometheusStorageMetrics()
}

var newPrometheusStorageMetrics func() storage.Metrics

// RegisterStorageMetricsConstructor registers the Prometheus storage metrics
// constructor. Called by pkg/metrics/prometheus during initialization.
func RegisterStorageMetricsConstructor(constructor func() storage.Metrics) {
	newPrometheusStorageMetrics = constructor
}
