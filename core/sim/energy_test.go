package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnergyIdle(t *testing.T) {
	m := NewEnergyModel(DefaultParams())
	st := NewState(3600, nil)

	r := m.Step(&st, 0)
	assert.InDelta(t, 0.2, r.DischargeA, 1e-12)
	assert.InDelta(t, 16.8, r.PowerW, 1e-9)
	want := 16.8 * (1.0 / 60) / 3600
	assert.InDelta(t, want, r.WhUsed, 1e-12)
	assert.InDelta(t, want, st.EnergyUsedWh, 1e-12)
	assert.InDelta(t, 3600-want, st.EnergyRemainingWh, 1e-9)
	assert.Zero(t, r.RegenA)
}

func TestEnergyDriving(t *testing.T) {
	m := NewEnergyModel(DefaultParams())
	d, regen := m.Currents(60, 0)
	assert.InDelta(t, 4.6, d, 1e-12)
	assert.Zero(t, regen)
}

func TestEnergyRegenCapped(t *testing.T) {
	m := NewEnergyModel(DefaultParams())
	st := NewState(3600, nil)
	st.PrevSpeed = 50

	r := m.Step(&st, 40)
	assert.InDelta(t, -600, r.Accel, 1e-6)
	assert.Equal(t, 5.0, r.RegenA)
	// 1.6 + 1 - 5*0.6 is negative and floors at zero
	assert.Zero(t, r.DischargeA)
	assert.Zero(t, r.WhUsed)
	recovered := 84 * 5 * (1.0 / 60) / 3600 * 0.6
	assert.InDelta(t, recovered, r.WhRecovered, 1e-12)
	// full pack stays capped, net usage goes negative
	assert.Equal(t, 3600.0, st.EnergyRemainingWh)
	assert.InDelta(t, -recovered, st.EnergyUsedWh, 1e-12)
}

func TestEnergyNoRegenOnGentleDecel(t *testing.T) {
	m := NewEnergyModel(DefaultParams())
	_, regen := m.Currents(30, -0.5)
	assert.Zero(t, regen)
	_, regen = m.Currents(30, -0.6)
	assert.InDelta(t, 0.3, regen, 1e-12)
}

func TestVoltageSag(t *testing.T) {
	m := NewEnergyModel(DefaultParams())
	assert.InDelta(t, 84.0, m.Voltage(100), 1e-9)
	assert.InDelta(t, 75.6, m.Voltage(50), 1e-9)
	assert.InDelta(t, 67.2, m.Voltage(0), 1e-9)
}

func TestEnergyRemainingFloorsAtZero(t *testing.T) {
	m := NewEnergyModel(DefaultParams())
	st := NewState(3600, nil)
	st.EnergyRemainingWh = 0.0001
	st.PrevSpeed = 100
	r := m.Step(&st, 100)
	assert.Equal(t, 0.0, st.EnergyRemainingWh)
	assert.Equal(t, 0.0, r.SoC)
	assert.False(t, math.IsNaN(r.Voltage))
	assert.InDelta(t, 67.2, r.Voltage, 1e-9)
}
