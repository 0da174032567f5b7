package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the service. Each collector owns
// its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// Auth metrics
	AuthDecisions *prometheus.CounterVec

	// Business metrics
	TreeEntries  prometheus.Histogram
	NodesCreated *prometheus.CounterVec
	NodesDeleted *prometheus.CounterVec
}

// NewCollector creates a collector with the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_operations_total",
				Help:      "Total number of graph store statements",
			},
			[]string{"mode", "operation", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_operation_duration_seconds",
				Help:      "Graph store statement duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode", "operation"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		AuthDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_decisions_total",
				Help:      "Authorization outcomes by method",
			},
			[]string{"method", "outcome"},
		),
		TreeEntries: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tree_entries",
				Help:      "Number of entries returned by the tree listing",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		NodesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_created_total",
				Help:      "Total number of nodes created",
			},
			[]string{"label"},
		),
		NodesDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_deleted_total",
				Help:      "Total number of nodes deleted",
			},
			[]string{"label"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.StoreOperations,
		c.StoreDuration,
		c.BreakerState,
		c.AuthDecisions,
		c.TreeEntries,
		c.NodesCreated,
		c.NodesDeleted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordAuth counts one authorization decision. A nil collector is a no-op.
func (c *Collector) RecordAuth(method, outcome string) {
	if c == nil {
		return
	}
	c.AuthDecisions.WithLabelValues(method, outcome).Inc()
}

// RecordCreated counts a node creation. A nil collector is a no-op.
func (c *Collector) RecordCreated(label string) {
	if c == nil {
		return
	}
	c.NodesCreated.WithLabelValues(label).Inc()
}

// RecordDeleted counts a node deletion. A nil collector is a no-op.
func (c *Collector) RecordDeleted(label string) {
	if c == nil {
		return
	}
	c.NodesDeleted.WithLabelValues(label).Inc()
}

// RecordTree observes the size of a tree response. A nil collector is a no-op.
func (c *Collector) RecordTree(entries int) {
	if c == nil {
		return
	}
	c.TreeEntries.Observe(float64(entries))
}
