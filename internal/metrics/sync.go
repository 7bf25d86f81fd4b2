// Package metrics exposes Prometheus metrics for health sync and the HTTP API.
package metrics

import (
	"github.com/pageza/foodtracking/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records health store reconciliation outcomes.
type SyncMetrics struct {
	registry *prometheus.Registry

	operationsTotal *prometheus.CounterVec
	batchesTotal    *prometheus.CounterVec
	entriesTotal    *prometheus.CounterVec
	lastBatchSize   prometheus.Gauge
}

var _ service.SyncRecorder = (*SyncMetrics)(nil)

// NewSyncMetrics creates and registers new sync metrics
func NewSyncMetrics(registry *prometheus.Registry) (*SyncMetrics, error) {
	m := &SyncMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SyncMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_sync_operations_total",
			Help: "Total number of health store calls made while syncing",
		},
		[]string{"operation", "status"}, // status: success, error
	)

	m.batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_sync_batches_total",
			Help: "Total number of sync batches",
		},
		[]string{"status"}, // status: success, partial, unavailable
	)

	m.entriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_sync_entries_total",
			Help: "Total number of entries processed by outcome",
		},
		[]string{"outcome"},
	)

	m.lastBatchSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_sync_last_batch_entries",
			Help: "Number of entries checked by the most recent sync batch",
		},
	)
}

// Describe implements the Collector interface
func (m *SyncMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.operationsTotal.Describe(ch)
	m.batchesTotal.Describe(ch)
	m.entriesTotal.Describe(ch)
	m.lastBatchSize.Describe(ch)
}

// Collect implements the Collector interface
func (m *SyncMetrics) Collect(ch chan<- prometheus.Metric) {
	m.operationsTotal.Collect(ch)
	m.batchesTotal.Collect(ch)
	m.entriesTotal.Collect(ch)
	m.lastBatchSize.Collect(ch)
}

// RecordOperation records a single health store call
func (m *SyncMetrics) RecordOperation(op string, ok bool) {
	m.operationsTotal.WithLabelValues(op, statusLabel(ok)).Inc()
}

// RecordBatch records the outcome of a whole sync batch
func (m *SyncMetrics) RecordBatch(result *service.SyncResult) {
	switch {
	case result.Err != nil:
		m.batchesTotal.WithLabelValues("unavailable").Inc()
		return
	case result.Failed() > 0 || result.Skipped > 0:
		m.batchesTotal.WithLabelValues("partial").Inc()
	default:
		m.batchesTotal.WithLabelValues("success").Inc()
	}

	m.lastBatchSize.Set(float64(result.Checked))
	m.entriesTotal.WithLabelValues("inserted").Add(float64(result.Inserted))
	m.entriesTotal.WithLabelValues("reinserted").Add(float64(result.Reinserted))
	m.entriesTotal.WithLabelValues("updated").Add(float64(result.Updated))
	m.entriesTotal.WithLabelValues("insert_failed").Add(float64(result.InsertFailed))
	m.entriesTotal.WithLabelValues("update_failed").Add(float64(result.UpdateFailed))
	m.entriesTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
