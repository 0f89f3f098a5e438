package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evdash/core/metrics"
)

const namespace = "evdash"

// PromSink exposes telemetry as Prometheus metrics.
type PromSink struct {
	speed       *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	voltage     *prometheus.GaugeVec
	soc         *prometheus.GaugeVec
	energy      *prometheus.GaugeVec
	lastUpdate  *prometheus.GaugeVec

	tripDistance   *prometheus.GaugeVec
	tripEfficiency *prometheus.GaugeVec
	tripDuration   *prometheus.GaugeVec
	trips          *prometheus.CounterVec
	stoplights     *prometheus.CounterVec

	records     *prometheus.CounterVec
	producerUp  *prometheus.GaugeVec
	subscribers prometheus.Gauge
}

// NewPromSink registers telemetry metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

func gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	gauges := []struct {
		dst  **prometheus.GaugeVec
		name string
		help string
	}{
		{&s.speed, "speed_kmh", "Current vehicle speed"},
		{&s.temperature, "motor_temperature_celsius", "Current motor temperature"},
		{&s.voltage, "pack_voltage_volts", "Current pack voltage"},
		{&s.soc, "soc_percent", "Current state of charge"},
		{&s.energy, "energy_remaining_wh", "Remaining pack energy"},
		{&s.lastUpdate, "last_update_timestamp_seconds", "Unix time of the last published snapshot"},
		{&s.tripDistance, "trip_distance_km", "Distance of the last completed trip"},
		{&s.tripEfficiency, "trip_efficiency_wh_per_km", "Efficiency of the last completed trip"},
		{&s.tripDuration, "trip_duration_seconds", "Duration of the last completed trip"},
	}
	for _, g := range gauges {
		if *g.dst, err = register(reg, gauge(g.name, g.help, "vehicle_id")); err != nil {
			return nil, err
		}
	}
	if s.trips, err = register(reg, counter("trips_total", "Completed simulated trips", "vehicle_id")); err != nil {
		return nil, err
	}
	if s.stoplights, err = register(reg, counter("stoplights_total", "Activated stoplights", "vehicle_id")); err != nil {
		return nil, err
	}
	if s.records, err = register(reg, counter("serial_records_total", "Serial records by outcome", "result")); err != nil {
		return nil, err
	}
	if s.producerUp, err = register(reg, gauge("producer_up", "1 while the telemetry producer runs", "producer")); err != nil {
		return nil, err
	}
	sub := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "push_subscribers", Help: "Connected push subscribers"})
	if s.subscribers, err = register[prometheus.Gauge](reg, sub); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordSnapshot sets the per-field gauges.
func (s *PromSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	v := ev.VehicleID
	snap := ev.Snapshot
	s.speed.WithLabelValues(v).Set(snap.Speed)
	s.temperature.WithLabelValues(v).Set(snap.Temperature)
	s.voltage.WithLabelValues(v).Set(snap.Voltage)
	s.soc.WithLabelValues(v).Set(snap.SoC)
	s.energy.WithLabelValues(v).Set(snap.Wh)
	s.lastUpdate.WithLabelValues(v).Set(float64(ev.Time.UnixNano()) / 1e9)
	return nil
}

// RecordTrip updates the trip summary gauges and counter.
func (s *PromSink) RecordTrip(ev coremetrics.TripEvent) error {
	s.trips.WithLabelValues(ev.VehicleID).Inc()
	s.tripDistance.WithLabelValues(ev.VehicleID).Set(ev.DistanceKm)
	s.tripEfficiency.WithLabelValues(ev.VehicleID).Set(ev.EfficiencyWhKm)
	s.tripDuration.WithLabelValues(ev.VehicleID).Set(ev.DurationS)
	return nil
}

// RecordStoplight counts stoplight activations.
func (s *PromSink) RecordStoplight(ev coremetrics.StoplightEvent) error {
	s.stoplights.WithLabelValues(ev.VehicleID).Inc()
	return nil
}

// RecordIngest counts serial records by outcome.
func (s *PromSink) RecordIngest(ev coremetrics.IngestEvent) error {
	result := "dropped"
	if ev.Accepted {
		result = "accepted"
	}
	s.records.WithLabelValues(result).Inc()
	return nil
}

// RecordProducer flips the producer liveness gauge.
func (s *PromSink) RecordProducer(ev coremetrics.ProducerEvent) error {
	up := 0.0
	if ev.Running {
		up = 1
	}
	s.producerUp.WithLabelValues(ev.Producer).Set(up)
	return nil
}

// RecordSubscribers sets the push subscriber gauge.
func (s *PromSink) RecordSubscribers(n int) error {
	s.subscribers.Set(float64(n))
	return nil
}
