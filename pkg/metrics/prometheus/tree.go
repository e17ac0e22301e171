// Package prometheus implements the domain metrics interfaces on top of the
// registry owned by pkg/metrics. Import it for its side effects.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/metrics"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

func init() {
	metrics.RegisterTreeMetricsConstructor(func() tree.Metrics { return NewTreeMetrics() })
	metrics.RegisterStorageMetricsConstructor(func() storage.Metrics { return NewStorageMetrics() })
}

// treeMetrics is the Prometheus implementation of tree.Metrics.
type treeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	compensations     *prometheus.CounterVec
	inconsistencies   *prometheus.CounterVec
	lockWait          *prometheus.HistogramVec
	purgeFailures     *prometheus.CounterVec
}

// NewTreeMetrics creates the tree collectors on the active registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewTreeMetrics() *treeMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &treeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fms_tree_operations_total",
				Help: "Total number of tree operations by operation and error code",
			},
			[]string{"operation", "code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fms_tree_operation_duration_milliseconds",
				Help: "Duration of tree operations in milliseconds",
				Buckets: []float64{
					1,     // metadata-only reads
					5,     // small folder creates
					25,    // renames
					100,   // uploads
					500,   // large moves
					2500,  // subtree deletes
					10000, // backend near its timeout
				},
			},
			[]string{"operation"},
		),
		compensations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fms_tree_compensations_total",
				Help: "Total number of compensating steps by operation, step and outcome",
			},
			[]string{"operation", "step", "status"},
		),
		inconsistencies: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fms_tree_inconsistencies_total",
				Help: "Total number of failed compensations that left store and backend disagreeing",
			},
			[]string{"operation"},
		),
		lockWait: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fms_tree_lock_wait_milliseconds",
				Help:    "Time spent waiting for subtree locks in milliseconds",
				Buckets: []float64{0.1, 1, 10, 100, 1000, 10000},
			},
			[]string{"operation", "status"},
		),
		purgeFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fms_tree_purge_failures_total",
				Help: "Total number of staged objects left behind after a delete",
			},
			[]string{"type"},
		),
	}
}

func (m *treeMetrics) ObserveOperation(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(op, codeLabel(err)).Inc()
	m.operationDuration.WithLabelValues(op).Observe(duration.Seconds() * 1000)
}

func (m *treeMetrics) RecordCompensation(op, step string, err error) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues(op, step, statusLabel(err)).Inc()
}

func (m *treeMetrics) RecordInconsistency(op string) {
	if m == nil {
		return
	}
	m.inconsistencies.WithLabelValues(op).Inc()
}

func (m *treeMetrics) ObserveLockWait(op string, wait time.Duration, acquired bool) {
	if m == nil {
		return
	}
	status := "acquired"
	if !acquired {
		status = "conflict"
	}
	m.lockWait.WithLabelValues(op, status).Observe(wait.Seconds() * 1000)
}

func (m *treeMetrics) RecordPurgeFailure(itemType tree.ItemType) {
	if m == nil {
		return
	}
	m.purgeFailures.WithLabelValues(string(itemType)).Inc()
}

// codeLabel maps an error to a bounded label value.
func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code, ok := treeerrors.CodeOf(err); ok {
		return code.String()
	}
	return "unknown"
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
