package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus collectors for a scan run.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal        *prometheus.CounterVec
	solanaRPCCallDuration      *prometheus.HistogramVec
	solanaRPCThrottleWait      *prometheus.HistogramVec
	solanaRPCSignaturesPerCall *prometheus.HistogramVec

	// Scan Metrics
	signaturesFilteredTotal *prometheus.CounterVec
	transactionsClassified  *prometheus.CounterVec
	eventsReportedTotal     *prometheus.CounterVec
	scanDuration            *prometheus.HistogramVec

	// NATS Metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Solana RPC Metrics
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		solanaRPCThrottleWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_throttle_wait_seconds",
				Help:    "Time spent waiting on the client-side rate limiter before an RPC call",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"endpoint"},
		),
		solanaRPCSignaturesPerCall: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_signatures_per_call",
				Help:    "Number of signatures fetched per GetSignaturesForAddress call",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
			},
			[]string{"endpoint"},
		),

		// Scan Metrics
		signaturesFilteredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garitrack_signatures_filtered_total",
				Help: "Signatures run through the date filter, by outcome (kept, dropped)",
			},
			[]string{"mint", "outcome"},
		),
		transactionsClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garitrack_transactions_classified_total",
				Help: "Transactions classified, by result (new_user, not_new_user, error)",
			},
			[]string{"mint", "result"},
		),
		eventsReportedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garitrack_events_reported_total",
				Help: "New user events written to the report sinks",
			},
			[]string{"mint"},
		),
		scanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "garitrack_scan_duration_seconds",
				Help:    "Duration of a full scan run in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"mint", "status"},
		),

		// NATS Metrics
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of messages published to NATS",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"subject"},
		),
	}
}

// Solana RPC metric helpers

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	if m == nil {
		return
	}
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordThrottleWait records time spent blocked on the rate limiter.
func (m *Metrics) RecordThrottleWait(endpoint string, duration float64) {
	if m == nil {
		return
	}
	m.solanaRPCThrottleWait.WithLabelValues(endpoint).Observe(duration)
}

// RecordRPCSignaturesPerCall records the number of signatures fetched.
func (m *Metrics) RecordRPCSignaturesPerCall(endpoint string, count float64) {
	if m == nil {
		return
	}
	m.solanaRPCSignaturesPerCall.WithLabelValues(endpoint).Observe(count)
}

// Scan metric helpers

// RecordSignaturesFiltered records how many signatures survived the date filter.
func (m *Metrics) RecordSignaturesFiltered(mint string, kept, dropped int) {
	if m == nil {
		return
	}
	m.signaturesFilteredTotal.WithLabelValues(mint, "kept").Add(float64(kept))
	m.signaturesFilteredTotal.WithLabelValues(mint, "dropped").Add(float64(dropped))
}

// RecordTransactionClassified records one classifier outcome.
func (m *Metrics) RecordTransactionClassified(mint, result string) {
	if m == nil {
		return
	}
	m.transactionsClassified.WithLabelValues(mint, result).Inc()
}

// RecordEventReported records one event handed to the report sinks.
func (m *Metrics) RecordEventReported(mint string) {
	if m == nil {
		return
	}
	m.eventsReportedTotal.WithLabelValues(mint).Inc()
}

// RecordScanDuration records a full run.
func (m *Metrics) RecordScanDuration(mint, status string, duration float64) {
	if m == nil {
		return
	}
	m.scanDuration.WithLabelValues(mint, status).Observe(duration)
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	if m == nil {
		return
	}
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

// Push sends everything in gatherer to a Prometheus Pushgateway under the
// given job name. Grouping label names must not also appear as metric labels.
func Push(ctx context.Context, gatewayURL, job string, gatherer prometheus.Gatherer, grouping map[string]string) error {
	pusher := push.New(gatewayURL, job).Gatherer(gatherer)
	for name, value := range grouping {
		pusher = pusher.Grouping(name, value)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
