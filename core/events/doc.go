// Package events defines the lifecycle events emitted on the event bus.
//
// Available event types:
//   - TripStarted: a new simulated trip begins
//   - TripCompleted: a simulated trip reached its duration
//   - StoplightStarted: a scheduled stop became active
//   - RecordAccepted, RecordDropped: outcome of each serial line
//   - ProducerStarted, ProducerStopped: telemetry producer liveness
package events
