// Package telemetry groups the observability support of chatclient.
//
//   - logging: slog handlers with secret redaction
//   - metrics: Prometheus counters and histograms fed by transport observers
//   - health: liveness and readiness probes served next to the metrics
//
// None of these change what goes on the wire. Metrics and probes are only
// served when metrics.listen_address is set.
package telemetry
