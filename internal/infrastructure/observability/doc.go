// Package observability wires Prometheus metrics and OpenTelemetry tracing into
// the HTTP stack and the graph store.
//
// A Collector owns its own registry and is served on /metrics. TracingMiddleware
// and MetricsMiddleware are mounted globally on the router; graph store spans
// are started by graphstore.InstrumentedStore from the same global tracer
// provider installed by InitTracing.
package observability
