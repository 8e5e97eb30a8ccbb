// Package prometheus exposes Store metrics to Prometheus.
//
// [PrometheusExporter] is a prometheus.Collector that reads
// goSession.Store.MetricsSnapshot on every scrape and emits const metrics:
// gosession_*_total counters and the gosession_gateway_latency_seconds
// histogram. A Store source also yields gosession_session_status{status=...},
// 1 for the current status and 0 for the others. Register it with any prometheus.Registerer, or mount
// [PrometheusExporter.Handler] which serves a private registry.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry.
//   - Mutate session state.
package prometheus
