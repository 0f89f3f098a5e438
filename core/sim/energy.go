package sim

import (
	"math"

	"github.com/kilianp07/evdash/core/telemetry"
)

const (
	idleCurrent     = 0.2
	drivingBaseline = 1.0
	regenThreshold  = -0.5
	regenGain       = 0.5
	maxRegenCurrent = 5.0
)

// Reading is the electrical output of one tick.
type Reading struct {
	Accel       float64 // km/h per simulated second
	DischargeA  float64
	RegenA      float64
	PowerW      float64
	WhUsed      float64
	WhRecovered float64
	SoC         float64
	Voltage     float64
}

// EnergyModel derives current draw, regeneration and pack state.
type EnergyModel struct {
	Increment       float64
	NominalVoltage  float64
	CapacityWh      float64
	RegenEfficiency float64
}

// NewEnergyModel builds an EnergyModel from p.
func NewEnergyModel(p Params) EnergyModel {
	return EnergyModel{
		Increment:       p.Increment,
		NominalVoltage:  p.NominalVoltage,
		CapacityWh:      p.CapacityWh,
		RegenEfficiency: p.RegenEfficiency,
	}
}

// Currents returns the discharge and regenerative currents in amperes for a
// given speed and acceleration.
func (m EnergyModel) Currents(speed, accel float64) (discharge, regen float64) {
	discharge = speed * speed / 1000
	if speed > 0 {
		discharge += drivingBaseline
	} else {
		discharge += idleCurrent
	}
	if accel < regenThreshold {
		regen = math.Min(math.Abs(accel)*regenGain, maxRegenCurrent)
		discharge = math.Max(discharge-regen*m.RegenEfficiency, 0)
	}
	return discharge, regen
}

// Voltage returns the pack voltage at the given state of charge.
func (m EnergyModel) Voltage(soc float64) float64 {
	return m.NominalVoltage * (0.8 + 0.2*soc/100)
}

// Step accounts one tick of energy for speed, using st.PrevSpeed for the
// acceleration. It updates the energy counters on st.
func (m EnergyModel) Step(st *State, speed float64) Reading {
	var r Reading
	r.Accel = (speed - st.PrevSpeed) / m.Increment
	r.DischargeA, r.RegenA = m.Currents(speed, r.Accel)

	r.PowerW = m.NominalVoltage * r.DischargeA
	r.WhUsed = r.PowerW * m.Increment / 3600
	st.EnergyUsedWh += r.WhUsed
	st.EnergyRemainingWh -= r.WhUsed

	if r.RegenA > 0 {
		r.WhRecovered = m.NominalVoltage * r.RegenA * m.Increment / 3600 * m.RegenEfficiency
		st.EnergyRemainingWh += r.WhRecovered
		st.EnergyUsedWh -= r.WhRecovered
	}
	st.EnergyRemainingWh = telemetry.Clamp(st.EnergyRemainingWh, 0, m.CapacityWh)

	r.SoC = telemetry.SoCFromWh(st.EnergyRemainingWh, m.CapacityWh)
	r.Voltage = m.Voltage(r.SoC)
	return r
}
