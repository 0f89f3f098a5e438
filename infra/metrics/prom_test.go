package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/evdash/core/metrics"
	"github.com/kilianp07/evdash/core/telemetry"
)

func TestPromSinkRecordSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	now := time.Unix(1700000000, 0)
	ev := coremetrics.SnapshotEvent{
		VehicleID: "ev-1",
		Snapshot:  telemetry.Snapshot{Speed: 42.4, Temperature: 31.2, Voltage: 83.5, SoC: 97.1, Wh: 3495.6},
		Time:      now,
	}
	if err := sink.RecordSnapshot(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	checks := map[string]struct {
		got  float64
		want float64
	}{
		"speed":       {testutil.ToFloat64(sink.speed.WithLabelValues("ev-1")), 42.4},
		"temperature": {testutil.ToFloat64(sink.temperature.WithLabelValues("ev-1")), 31.2},
		"voltage":     {testutil.ToFloat64(sink.voltage.WithLabelValues("ev-1")), 83.5},
		"soc":         {testutil.ToFloat64(sink.soc.WithLabelValues("ev-1")), 97.1},
		"energy":      {testutil.ToFloat64(sink.energy.WithLabelValues("ev-1")), 3495.6},
		"last_update": {testutil.ToFloat64(sink.lastUpdate.WithLabelValues("ev-1")), 1700000000},
	}
	for name, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", name, c.got, c.want)
		}
	}
}

func TestPromSinkCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	_ = sink.RecordTrip(coremetrics.TripEvent{VehicleID: "ev-1", DistanceKm: 3.2, EfficiencyWhKm: 9.8, DurationS: 330})
	_ = sink.RecordTrip(coremetrics.TripEvent{VehicleID: "ev-1", DistanceKm: 3.4, EfficiencyWhKm: 9.5, DurationS: 330})
	_ = sink.RecordStoplight(coremetrics.StoplightEvent{VehicleID: "ev-1"})
	_ = sink.RecordIngest(coremetrics.IngestEvent{Accepted: true})
	_ = sink.RecordIngest(coremetrics.IngestEvent{Reason: "bad"})
	_ = sink.RecordIngest(coremetrics.IngestEvent{Reason: "bad"})
	_ = sink.RecordProducer(coremetrics.ProducerEvent{Producer: "simulation", Running: true})
	_ = sink.RecordSubscribers(3)

	if v := testutil.ToFloat64(sink.trips.WithLabelValues("ev-1")); v != 2 {
		t.Errorf("trips = %v", v)
	}
	if v := testutil.ToFloat64(sink.tripDistance.WithLabelValues("ev-1")); v != 3.4 {
		t.Errorf("trip distance = %v", v)
	}
	if v := testutil.ToFloat64(sink.stoplights.WithLabelValues("ev-1")); v != 1 {
		t.Errorf("stoplights = %v", v)
	}
	if v := testutil.ToFloat64(sink.records.WithLabelValues("accepted")); v != 1 {
		t.Errorf("accepted = %v", v)
	}
	if v := testutil.ToFloat64(sink.records.WithLabelValues("dropped")); v != 2 {
		t.Errorf("dropped = %v", v)
	}
	if v := testutil.ToFloat64(sink.producerUp.WithLabelValues("simulation")); v != 1 {
		t.Errorf("producer up = %v", v)
	}
	if v := testutil.ToFloat64(sink.subscribers); v != 3 {
		t.Errorf("subscribers = %v", v)
	}
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = a.RecordStoplight(coremetrics.StoplightEvent{VehicleID: "v"})
	if v := testutil.ToFloat64(b.stoplights.WithLabelValues("v")); v != 1 {
		t.Fatalf("collectors not shared: %v", v)
	}
}

func TestRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := register(reg, gauge("conflict", "first", "a")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := register(reg, counter("conflict", "second", "a")); err == nil {
		t.Fatal("expected conflict error")
	}
}
