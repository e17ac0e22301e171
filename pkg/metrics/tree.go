package metrics

import (
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
)

// NewTreeMetrics creates a Prometheus-backed tree.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), or if
// pkg/metrics/prometheus was not linked in. Pass the result to
// tree.WithMetrics either way; nil disables collection.
//
// Example usage:
//
//	metrics.InitRegistry()
//	coord := tree.NewCoordinator(store, backend, cfg,
//		tree.WithMetrics(metrics.NewTreeMetrics()))
func NewTreeMetrics() tree.Metrics {
	if !IsEnabled() || newPrometheusTreeMetrics == nil {
		return nil
	}
	return newPrometheusTreeMetrics()
}

// newPrometheusTreeMetrics is implemented in pkg/metrics/prometheus/tree.go.
// The indirection avoids an import cycle.
var newPrometheusTreeMetrics func() tree.Metrics

// RegisterTreeMetricsConstructor registers the Prometheus tree metrics
// constructor. Called by pkg/metrics/prometheus during initialization.
func RegisterTreeMetricsConstructor(constructor func() tree.Metrics) {
	newPrometheusTreeMetrics = constructor
}
