package sim

import "github.com/kilianp07/evdash/core/telemetry"

const (
	smoothing     = 0.1
	heatRate      = 0.005
	coolRate      = 0.008
	heatThreshold = 10.0
)

// Dynamics integrates speed, distance and motor temperature.
type Dynamics struct {
	Increment float64
}

// Smooth moves prev a tenth of the way toward target and clamps the result
// to the valid speed range.
func Smooth(prev, target float64) float64 {
	v := prev + (target-prev)*smoothing
	return telemetry.Clamp(v, telemetry.MinSpeed, telemetry.MaxSpeed)
}

// NextTemperature applies one tick of heating or cooling.
func NextTemperature(temp, speed float64) float64 {
	if speed > heatThreshold {
		temp += heatRate * (speed / 40)
	} else {
		temp -= coolRate
	}
	return telemetry.Clamp(temp, telemetry.MinTemperature, telemetry.MaxTemperature)
}

// Step computes the new speed from st.PrevSpeed and target, then advances
// distance and temperature. st.PrevSpeed is left untouched.
func (d Dynamics) Step(st *State, target float64) float64 {
	speed := Smooth(st.PrevSpeed, target)
	st.DistanceKm += speed / 3600 * d.Increment
	st.Temperature = NextTemperature(st.Temperature, speed)
	return speed
}
