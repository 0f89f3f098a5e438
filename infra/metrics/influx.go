package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evdash/core/metrics"
	"github.com/kilianp07/evdash/infra/logger"
)

// InfluxConfig configures the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// IntervalMs is the minimum spacing between two telemetry points.
	// Zero writes every snapshot.
	IntervalMs int `json:"interval_ms"`
}

// InfluxSink writes telemetry points to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
		interval: time.Duration(cfg.IntervalMs) * time.Millisecond,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) due(now time.Time) bool {
	if s.interval <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return false
	}
	s.last = now
	return true
}

// RecordSnapshot writes a telemetry point, honouring the configured interval.
func (s *InfluxSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	if !s.due(ev.Time) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap := ev.Snapshot
	p := write.NewPointWithMeasurement("telemetry").
		AddTag("vehicle_id", ev.VehicleID).
		AddField("trip_ms", snap.Timestamp).
		AddField("speed_kmh", round3(snap.Speed)).
		AddField("temperature_c", round3(snap.Temperature)).
		AddField("voltage_v", round3(snap.Voltage)).
		AddField("soc_percent", round3(snap.SoC)).
		AddField("energy_wh", round3(snap.Wh)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrip writes the summary of a completed trip.
func (s *InfluxSink) RecordTrip(ev coremetrics.TripEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip").
		AddTag("vehicle_id", ev.VehicleID).
		AddField("trip", ev.Trip).
		AddField("distance_km", round3(ev.DistanceKm)).
		AddField("energy_used_wh", round3(ev.EnergyUsedWh)).
		AddField("efficiency_wh_km", round3(ev.EfficiencyWhKm)).
		AddField("duration_s", round3(ev.DurationS)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStoplight writes a stoplight activation.
func (s *InfluxSink) RecordStoplight(ev coremetrics.StoplightEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("stoplight").
		AddTag("vehicle_id", ev.VehicleID).
		AddField("trip", ev.Trip).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
