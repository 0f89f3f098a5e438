package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evdash/core/metrics"
	"github.com/kilianp07/evdash/core/telemetry"
)

type lineRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (l *lineRecorder) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	l.mu.Lock()
	l.bodies = append(l.bodies, strings.TrimSpace(string(data)))
	l.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (l *lineRecorder) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.bodies...)
}

func TestInfluxSink_RecordSnapshot(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.SnapshotEvent{
		VehicleID: "ev-1",
		Snapshot:  telemetry.Snapshot{Timestamp: 1016.7, Speed: 42.4, Temperature: 25.3, Voltage: 83.99, SoC: 99.9, Wh: 3597.2},
		Time:      now,
	}
	if err := sink.RecordSnapshot(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("telemetry").
		AddTag("vehicle_id", "ev-1").
		AddField("trip_ms", 1016.7).
		AddField("speed_kmh", 42.4).
		AddField("temperature_c", 25.3).
		AddField("voltage_v", 83.99).
		AddField("soc_percent", 99.9).
		AddField("energy_wh", 3597.2).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := rec.get(); len(got) != 1 || got[0] != exp {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_SnapshotInterval(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Org: "org", Bucket: "bucket", IntervalMs: 1000})
	defer sink.Close()
	base := time.Now()
	for i := 0; i < 10; i++ {
		ev := coremetrics.SnapshotEvent{VehicleID: "ev-1", Time: base.Add(time.Duration(i) * 100 * time.Millisecond)}
		if err := sink.RecordSnapshot(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	_ = sink.RecordSnapshot(coremetrics.SnapshotEvent{VehicleID: "ev-1", Time: base.Add(time.Second)})
	if got := rec.get(); len(got) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(got))
	}
}

func TestInfluxSink_RecordTrip(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.TripEvent{VehicleID: "ev-1", Trip: 2, DistanceKm: 3.21234, EnergyUsedWh: 31.5, EfficiencyWhKm: 9.8061, DurationS: 330.0166, Time: now}
	if err := sink.RecordTrip(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("trip").
		AddTag("vehicle_id", "ev-1").
		AddField("trip", 2).
		AddField("distance_km", 3.212).
		AddField("energy_used_wh", 31.5).
		AddField("efficiency_wh_km", 9.806).
		AddField("duration_s", 330.017).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := rec.get(); len(got) != 1 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
