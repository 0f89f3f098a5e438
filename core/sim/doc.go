// Package sim generates synthetic telemetry for a repeating urban trip.
//
// Each trip lasts a fixed number of simulated seconds and follows a phased
// speed profile (idle, acceleration, cruise, deceleration, stop, short
// pulse) with four randomly placed stoplights. Speed is smoothed toward the
// target, distance and motor temperature are integrated, and an electrical
// model derives current draw, regenerative recovery, remaining energy, state
// of charge and pack voltage. When the trip duration is reached the engine
// summarises the trip, pauses and starts over.
package sim
