package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/evdash/core/events"
	coremetrics "github.com/kilianp07/evdash/core/metrics"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/internal/eventbus"
)

// SnapshotSource is a broadcaster of telemetry snapshots.
type SnapshotSource interface {
	Subscribe() <-chan telemetry.Snapshot
	Unsubscribe(<-chan telemetry.Snapshot)
}

// StartEventCollector subscribes to the event bus and records metrics for
// lifecycle events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, vehicleID string) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				recordEvent(sink, vehicleID, ev)
			}
		}
	}()
}

func recordEvent(sink coremetrics.MetricsSink, vehicleID string, ev eventbus.Event) {
	now := time.Now()
	switch e := ev.(type) {
	case events.TripCompleted:
		if r, ok := sink.(coremetrics.TripRecorder); ok {
			_ = r.RecordTrip(coremetrics.TripEvent{
				VehicleID:      vehicleID,
				Trip:           e.Trip,
				DistanceKm:     e.DistanceKm,
				EnergyUsedWh:   e.EnergyUsedWh,
				EfficiencyWhKm: e.EfficiencyWhKm,
				DurationS:      e.DurationS,
				Time:           e.At,
			})
		}
	case events.StoplightStarted:
		if r, ok := sink.(coremetrics.StoplightRecorder); ok {
			_ = r.RecordStoplight(coremetrics.StoplightEvent{
				VehicleID: vehicleID,
				Trip:      e.Trip,
				Duration:  time.Duration(e.Duration * float64(time.Second)),
				Time:      now,
			})
		}
	case events.RecordAccepted:
		if r, ok := sink.(coremetrics.IngestRecorder); ok {
			_ = r.RecordIngest(coremetrics.IngestEvent{Accepted: true, Time: now})
		}
	case events.RecordDropped:
		if r, ok := sink.(coremetrics.IngestRecorder); ok {
			_ = r.RecordIngest(coremetrics.IngestEvent{Reason: e.Reason, Time: now})
		}
	case events.ProducerStarted:
		if r, ok := sink.(coremetrics.ProducerRecorder); ok {
			_ = r.RecordProducer(coremetrics.ProducerEvent{Producer: e.Producer, Running: true, Time: now})
		}
	case events.ProducerStopped:
		if r, ok := sink.(coremetrics.ProducerRecorder); ok {
			pe := coremetrics.ProducerEvent{Producer: e.Producer, Time: now}
			if e.Err != nil {
				pe.Error = e.Err.Error()
			}
			_ = r.RecordProducer(pe)
		}
	}
}

// StartSnapshotCollector subscribes to src like a push client and records
// every snapshot it receives. subscribers, when non-nil, is sampled after
// each snapshot for the push subscriber gauge.
func StartSnapshotCollector(ctx context.Context, src SnapshotSource, sink coremetrics.MetricsSink, vehicleID string, subscribers func() int) {
	if src == nil || sink == nil {
		return
	}
	sub := src.Subscribe()
	sr, _ := sink.(coremetrics.SubscriberRecorder)
	go func() {
		defer src.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-sub:
				if !ok {
					return
				}
				_ = sink.RecordSnapshot(coremetrics.SnapshotEvent{VehicleID: vehicleID, Snapshot: snap, Time: time.Now()})
				if sr != nil && subscribers != nil {
					_ = sr.RecordSubscribers(subscribers())
				}
			}
		}
	}()
}
