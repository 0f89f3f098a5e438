package sim

import (
	"time"

	"github.com/kilianp07/evdash/core/telemetry"
)

// Params holds the tunable constants of the simulation.
type Params struct {
	// Increment is the simulated time advanced per tick, in seconds.
	Increment float64
	// TripDuration is the simulated length of a trip, in seconds.
	TripDuration float64
	// ResetPause is the wall-clock pause between two trips.
	ResetPause time.Duration
	// Realtime sleeps one increment per tick when true.
	Realtime bool

	NominalVoltage  float64
	CapacityWh      float64
	RegenEfficiency float64
}

// DefaultParams returns the standard 60 Hz, 330 s trip configuration.
func DefaultParams() Params {
	return Params{
		Increment:       1.0 / 60,
		TripDuration:    330,
		ResetPause:      2 * time.Second,
		Realtime:        true,
		NominalVoltage:  telemetry.NominalVoltage,
		CapacityWh:      telemetry.PackCapacityWh,
		RegenEfficiency: 0.6,
	}
}

// TickInterval is the wall-clock duration of one tick.
func (p Params) TickInterval() time.Duration {
	return time.Duration(p.Increment * float64(time.Second))
}
