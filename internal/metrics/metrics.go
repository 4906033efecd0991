package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog cache
	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storecore_catalog_refresh_total",
			Help: "Upstream catalog fetches by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	CatalogServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storecore_catalog_reads_total",
			Help: "Catalog reads by the kind of snapshot served",
		},
		[]string{"kind"}, // "fresh", "refreshed", "stale", "empty"
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storecore_catalog_products",
			Help: "Number of products in the current snapshot",
		},
	)

	// Engine dispatcher
	EngineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storecore_engine_duration_seconds",
			Help:    "Scoring engine invocation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	EngineInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storecore_engine_invocations_total",
			Help: "Scoring engine invocations by outcome",
		},
		[]string{"engine", "outcome"}, // outcome is "ok" or an error kind
	)

	EngineInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storecore_engine_in_flight",
			Help: "Engine invocations currently holding a pool slot",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storecore_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Degrade policy
	Degraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storecore_degraded_responses_total",
			Help: "Responses served through a degrade policy",
		},
		[]string{"endpoint", "policy"},
	)

	// Purchases
	PurchasesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storecore_purchases_recorded_total",
			Help: "Purchases appended to the transaction history",
		},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storecore_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)
