// Package instrumentation provides OpenTelemetry metrics for mailclerk.
//
// Metrics are recorded through the OpenTelemetry metric API and exported in
// Prometheus format; the provider exposes an HTTP handler for the /metrics
// endpoint. Tracing is intentionally not wired up: there is no tracing
// backend in this deployment.
//
// When instrumentation is disabled the provider hands out a no-op Metrics
// recorder, so call sites never need to check whether metrics are on.
package instrumentation
