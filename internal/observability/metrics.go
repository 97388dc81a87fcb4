package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreQueryLatency records store latency by backend, collection and operation.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devconnect_store_query_latency_seconds",
		Help:    "Store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "collection", "operation"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// DomainEvents counts feed and profile mutations by event type.
	DomainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_domain_events_total",
		Help: "Domain events emitted by type",
	}, []string{"event_type"})

	// AuthFailures counts rejected credentials by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_auth_failures_total",
		Help: "Rejected authentication attempts by reason",
	}, []string{"reason"})

	// GitHubLookups counts GitHub repository lookups by outcome.
	GitHubLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_github_lookups_total",
		Help: "GitHub repository lookups by outcome",
	}, []string{"outcome"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devconnect_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnect_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(backend, collection, operation string) func() {
	start := time.Now()
	return func() {
		StoreQueryLatency.WithLabelValues(backend, collection, operation).Observe(time.Since(start).Seconds())
	}
}
