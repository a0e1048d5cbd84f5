package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreBackendErrors counts backend errors by command name.
	StoreBackendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_store_backend_errors_total",
		Help: "Total number of document store backend errors by command",
	}, []string{"command"})

	// EngineOps counts engine operations by name and outcome.
	EngineOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_engine_operations_total",
		Help: "Total number of engine operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// TransactRetries counts optimistic transaction retries.
	TransactRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_store_transact_retries_total",
		Help: "Total number of optimistic transaction retries",
	})

	// ActiveSubscriptions is the gauge of live snapshot subscriptions.
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "glimpse_active_subscriptions",
		Help: "Number of active snapshot subscriptions",
	})

	// SnapshotsDelivered counts snapshots delivered to subscribers.
	SnapshotsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_snapshots_delivered_total",
		Help: "Total number of snapshots delivered to subscription handlers",
	})

	// RelayPublishes counts notification relay publishes by kind.
	RelayPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_relay_publishes_total",
		Help: "Total number of notification relay publishes by kind",
	}, []string{"kind"})
)

// RecordEngineOp records one engine operation outcome.
func RecordEngineOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EngineOps.WithLabelValues(operation, outcome).Inc()
}
