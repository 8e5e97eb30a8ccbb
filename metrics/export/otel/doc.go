// Package otel binds Store metrics to OpenTelemetry instruments.
//
// [NewOTelExporter] creates an Int64ObservableCounter per Store counter and
// one Int64ObservableGauge per latency bucket (cumulative) plus a count
// gauge. Sources that report a session status (a Store does) also get a
// gosession_session_status gauge with one data point per status. A single
// callback reads the metrics snapshot each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate session state.
package otel
