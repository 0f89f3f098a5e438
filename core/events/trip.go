package events

import "time"

// TripStarted is published when the simulation starts a trip.
type TripStarted struct {
	Trip       int
	Stoplights []int // scheduled stop times in trip seconds
	At         time.Time
}

// TripCompleted carries the raw, unrounded summary of a finished trip.
type TripCompleted struct {
	Trip           int
	DistanceKm     float64
	EnergyUsedWh   float64
	EfficiencyWhKm float64
	DurationS      float64
	At             time.Time
}

// StoplightStarted is published when a scheduled stop forces the target
// speed to zero.
type StoplightStarted struct {
	Trip      int
	TripTime  float64
	Threshold int
	Duration  float64
}
