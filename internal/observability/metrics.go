// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Sweep metrics
	WalletsProcessed *prometheus.CounterVec
	LamportsSwept    prometheus.Counter
	TokenTransfers   prometheus.Counter
	AccountsCreated  prometheus.Counter
	AccountsClosed   prometheus.Counter
	SweepDuration    *prometheus.HistogramVec

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	// Batch metrics
	BatchDuration      prometheus.Gauge
	LastBatchTimestamp prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates a new Metrics instance registered with reg.
// reg must also implement prometheus.Gatherer for WriteTextfile to work.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "solana_wallet_sweep"
	}
	factory := promauto.With(reg)

	m := &Metrics{
		WalletsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "wallets_total",
			Help:      "Total number of wallets processed by outcome status",
		}, []string{"status"}),
		LamportsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "lamports_total",
			Help:      "Total native lamports moved to the destination",
		}),
		TokenTransfers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "token_transfers_total",
			Help:      "Total number of token transfer instructions submitted",
		}),
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "accounts_created_total",
			Help:      "Total number of destination associated token accounts created",
		}),
		AccountsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "accounts_closed_total",
			Help:      "Total number of source token accounts closed",
		}),
		SweepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Wall time of a single wallet sweep",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"status"}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC call latency by method, retries included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_errors_total",
			Help:      "Total number of failed RPC calls by method",
		}, []string{"method"}),

		BatchDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Wall time of the last batch run",
		}),
		LastBatchTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "last_run_timestamp",
			Help:      "Unix timestamp of the last completed batch run",
		}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// SweepOutcome summarizes one wallet sweep for metrics.
type SweepOutcome struct {
	Status          string
	Lamports        uint64
	TokenTransfers  int
	AccountsCreated int
	AccountsClosed  int
	Duration        time.Duration
}

// RecordSweep records the outcome of one wallet sweep.
// Moved amounts only count for submitted sweeps.
func (m *Metrics) RecordSweep(o SweepOutcome, submitted bool) {
	m.WalletsProcessed.WithLabelValues(o.Status).Inc()
	m.SweepDuration.WithLabelValues(o.Status).Observe(o.Duration.Seconds())
	if !submitted {
		return
	}
	m.LamportsSwept.Add(float64(o.Lamports))
	m.TokenTransfers.Add(float64(o.TokenTransfers))
	m.AccountsCreated.Add(float64(o.AccountsCreated))
	m.AccountsClosed.Add(float64(o.AccountsClosed))
}

// RecordRPCCall records an RPC call's latency and error.
func (m *Metrics) RecordRPCCall(method string, elapsed time.Duration, err error) {
	m.RPCCallLatency.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordBatch records the duration of a finished batch.
func (m *Metrics) RecordBatch(duration time.Duration, finishedAt time.Time) {
	m.BatchDuration.Set(duration.Seconds())
	m.LastBatchTimestamp.Set(float64(finishedAt.Unix()))
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("metrics registry cannot be gathered")
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
