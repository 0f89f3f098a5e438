package metrics

import (
	"time"

	"github.com/kilianp07/evdash/core/telemetry"
)

// SnapshotEvent is a published telemetry snapshot.
type SnapshotEvent struct {
	VehicleID string
	Snapshot  telemetry.Snapshot
	Time      time.Time
}

// MetricsSink records telemetry snapshots.
type MetricsSink interface {
	RecordSnapshot(ev SnapshotEvent) error
}

// TripEvent describes a completed trip.
type TripEvent struct {
	VehicleID      string
	Trip           int
	DistanceKm     float64
	EnergyUsedWh   float64
	EfficiencyWhKm float64
	DurationS      float64
	Time           time.Time
}

// TripRecorder records completed trips.
type TripRecorder interface {
	RecordTrip(ev TripEvent) error
}

// StoplightEvent describes an activated stoplight.
type StoplightEvent struct {
	VehicleID string
	Trip      int
	Duration  time.Duration
	Time      time.Time
}

// StoplightRecorder records stoplight activations.
type StoplightRecorder interface {
	RecordStoplight(ev StoplightEvent) error
}

// IngestEvent is the outcome of one serial line.
type IngestEvent struct {
	Accepted bool
	Reason   string
	Time     time.Time
}

// IngestRecorder records serial ingestion outcomes.
type IngestRecorder interface {
	RecordIngest(ev IngestEvent) error
}

// ProducerEvent reports a producer starting or stopping.
type ProducerEvent struct {
	Producer string
	Running  bool
	Error    string
	Time     time.Time
}

// ProducerRecorder records producer liveness changes.
type ProducerRecorder interface {
	RecordProducer(ev ProducerEvent) error
}

// SubscriberRecorder records the number of connected push subscribers.
type SubscriberRecorder interface {
	RecordSubscribers(n int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSnapshot(SnapshotEvent) error   { return nil }
func (NopSink) RecordTrip(TripEvent) error           { return nil }
func (NopSink) RecordStoplight(StoplightEvent) error { return nil }
func (NopSink) RecordIngest(IngestEvent) error       { return nil }
func (NopSink) RecordProducer(ProducerEvent) error   { return nil }
func (NopSink) RecordSubscribers(int) error          { return nil }
