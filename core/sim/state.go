package sim

import "github.com/kilianp07/evdash/core/telemetry"

// State is the mutable state of one trip. It is owned by the engine
// goroutine and replaced wholesale when a trip resets.
type State struct {
	T                 float64 // simulated seconds since trip start
	PrevSpeed         float64
	DistanceKm        float64
	EnergyUsedWh      float64 // can go negative when regen exceeds draw
	EnergyRemainingWh float64
	Temperature       float64

	Stoplights         []int // pending stop times, ascending
	StoplightActive    bool
	StoplightRemaining float64
}

// NewState returns the state at the start of a trip.
func NewState(capacityWh float64, stoplights []int) State {
	return State{
		EnergyRemainingWh: capacityWh,
		Temperature:       telemetry.AmbientTemperature,
		Stoplights:        stoplights,
	}
}
