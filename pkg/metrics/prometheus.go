// Package metrics provides Prometheus metrics for the transparency
// verification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ledger metrics
	transactionsAppended     prometheus.Counter
	appendErrors             prometheus.Counter
	transactionVerifications *prometheus.CounterVec
	ledgerSize               prometheus.Gauge
	balanceCurrent           prometheus.Gauge
	appendLatency            prometheus.Histogram

	// Scoring metrics
	scoreComputations prometheus.Counter
	lastScore         prometheus.Gauge

	// Report metrics
	reportsComposed     prometheus.Counter
	reportVerifications *prometheus.CounterVec
	composeLatency      prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry holding the pipeline metrics, for
// embedding applications that want to expose or gather them.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "palfare",
		subsystem:        "transparency",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.transactionsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transactions_appended_total",
		Help:      "Total number of transactions appended to the ledger",
	})

	m.appendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "append_errors_total",
		Help:      "Total number of rejected or failed append operations",
	})

	m.transactionVerifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transaction_verifications_total",
		Help:      "Total number of transaction fingerprint verifications by result",
	}, []string{"result"})

	m.ledgerSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_size",
		Help:      "Current number of transactions in the ledger",
	})

	m.balanceCurrent = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "balance_current",
		Help:      "Current ledger balance",
	})

	m.appendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "append_latency_seconds",
		Help:      "Histogram of append operation latency in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoreComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_computations_total",
		Help:      "Total number of transparency score computations",
	})

	m.lastScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_score",
		Help:      "Most recently computed transparency score",
	})

	m.reportsComposed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_composed_total",
		Help:      "Total number of audit reports composed",
	})

	m.reportVerifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_verifications_total",
		Help:      "Total number of audit report verifications by result",
	}, []string{"result"})

	m.composeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compose_latency_seconds",
		Help:      "Histogram of audit report composition latency in seconds",
		Buckets:   m.histogramBuckets,
	})
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// RecordTransactionAppended increments the appended transaction counter.
func (m *Manager) RecordTransactionAppended() {
	if m.enabled {
		m.transactionsAppended.Inc()
	}
}

// RecordAppendError increments the append error counter.
func (m *Manager) RecordAppendError() {
	if m.enabled {
		m.appendErrors.Inc()
	}
}

// RecordVerification counts a transaction verification by outcome.
func (m *Manager) RecordVerification(ok bool) {
	if m.enabled {
		m.transactionVerifications.WithLabelValues(resultLabel(ok)).Inc()
	}
}

// UpdateLedgerSize sets the current ledger size gauge.
func (m *Manager) UpdateLedgerSize(n int) {
	if m.enabled {
		m.ledgerSize.Set(float64(n))
	}
}

// UpdateBalance sets the current balance gauge.
func (m *Manager) UpdateBalance(current int64) {
	if m.enabled {
		m.balanceCurrent.Set(float64(current))
	}
}

// RecordAppendLatency observes an append duration in seconds.
func (m *Manager) RecordAppendLatency(seconds float64) {
	if m.enabled {
		m.appendLatency.Observe(seconds)
	}
}

// RecordScoreComputed counts a score computation and records the score.
func (m *Manager) RecordScoreComputed(score float64) {
	if m.enabled {
		m.scoreComputations.Inc()
		m.lastScore.Set(score)
	}
}

// RecordReportComposed increments the composed report counter.
func (m *Manager) RecordReportComposed() {
	if m.enabled {
		m.reportsComposed.Inc()
	}
}

// RecordReportVerification counts a report verification by outcome.
func (m *Manager) RecordReportVerification(ok bool) {
	if m.enabled {
		m.reportVerifications.WithLabelValues(resultLabel(ok)).Inc()
	}
}

// RecordComposeLatency observes a compose duration in seconds.
func (m *Manager) RecordComposeLatency(seconds float64) {
	if m.enabled {
		m.composeLatency.Observe(seconds)
	}
}

// Package-level helpers operating on the global manager.

// RecordTransactionAppended increments the appended transaction counter.
func RecordTransactionAppended() { globalManager.RecordTransactionAppended() }

// RecordAppendError increments the append error counter.
func RecordAppendError() { globalManager.RecordAppendError() }

// RecordVerification counts a transaction verification by outcome.
func RecordVerification(ok bool) { globalManager.RecordVerification(ok) }

// UpdateLedgerSize sets the current ledger size gauge.
func UpdateLedgerSize(n int) { globalManager.UpdateLedgerSize(n) }

// UpdateBalance sets the current balance gauge.
func UpdateBalance(current int64) { globalManager.UpdateBalance(current) }

// RecordAppendLatency observes an append duration in seconds.
func RecordAppendLatency(seconds float64) { globalManager.RecordAppendLatency(seconds) }

// RecordScoreComputed counts a score computation and records the score.
func RecordScoreComputed(score float64) { globalManager.RecordScoreComputed(score) }

// RecordReportComposed increments the composed report counter.
func RecordReportComposed() { globalManager.RecordReportComposed() }

// RecordReportVerification counts a report verification by outcome.
func RecordReportVerification(ok bool) { globalManager.RecordReportVerification(ok) }

// RecordComposeLatency observes a compose duration in seconds.
func RecordComposeLatency(seconds float64) { globalManager.RecordComposeLatency(seconds) }
