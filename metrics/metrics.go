// Package metrics holds the prometheus collectors for the board engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations counts committed mutating operations by operation and result.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kanban_mutations_total",
		Help: "Mutating board operations by operation and result",
	}, []string{"operation", "result"})

	// TxDuration tracks how long a unit of work takes, retries included.
	TxDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kanban_tx_duration_seconds",
		Help:    "Store transaction duration in seconds, retries included",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	})

	// TxRetries counts transactions re-run after losing the write lock.
	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kanban_tx_retries_total",
		Help: "Transactions retried after a busy or locked store",
	})

	// TxConflicts counts transactions that gave up after exhausting retries.
	TxConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kanban_tx_conflicts_total",
		Help: "Transactions that exhausted their retries",
	})

	// ActivityAppendFailures counts card activities that could not be
	// recorded while the primary mutation still committed.
	ActivityAppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kanban_activity_append_failures_total",
		Help: "Card activity records dropped while the mutation committed",
	})

	// HubClients is the number of connected board feed clients.
	HubClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kanban_hub_clients",
		Help: "Connected board event feed clients",
	})
)

// Observe records the outcome of one mutating operation.
func Observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Mutations.WithLabelValues(operation, result).Inc()
}
