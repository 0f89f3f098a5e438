// Package metrics defines the sink interfaces used to observe the telemetry
// pipeline. A MetricsSink records every published snapshot; sinks may also
// implement the optional recorder interfaces for trip, stoplight, ingestion,
// producer and subscriber events. Sinks are built from configuration through
// the factory registry and combined with NewMultiSink when several are set.
package metrics
