// Package telemetry holds the vehicle telemetry snapshot and the store that
// exposes it to consumers.
//
// A single producer (the simulation engine or the serial adapter) builds a
// new Snapshot value for every update and hands it to a Hub. The Hub swaps
// the Store's current value atomically and then fans the snapshot out to push
// subscribers without waiting on them. Poll consumers read the Store on their
// own schedule and never observe a partially written record.
package telemetry
