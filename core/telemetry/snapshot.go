package telemetry

import "math"

const (
	// PackCapacityWh is the energy a full pack holds.
	PackCapacityWh = 3600.0
	// NominalVoltage is the pack voltage at 100% SoC.
	NominalVoltage = 84.0

	MinSpeed       = 0.0
	MaxSpeed       = 100.0
	MinTemperature = 15.0
	MaxTemperature = 70.0
	// AmbientTemperature is the temperature at process start and after a trip reset.
	AmbientTemperature = 25.0
)

// Snapshot is one complete telemetry record. It is passed by value and never
// mutated once published.
type Snapshot struct {
	Timestamp      float64 `json:"timestamp" msgpack:"timestamp"` // ms since trip start
	Speed          float64 `json:"speed" msgpack:"speed"`         // km/h
	Temperature    float64 `json:"temperature" msgpack:"temperature"`
	Voltage        float64 `json:"voltage" msgpack:"voltage"`
	SoC            float64 `json:"soc" msgpack:"soc"` // percent
	Wh             float64 `json:"wh" msgpack:"wh"`   // remaining energy
	TripDistance   float64 `json:"trip_distance" msgpack:"trip_distance"`     // km, last completed trip
	TripEfficiency float64 `json:"trip_efficiency" msgpack:"trip_efficiency"` // Wh/km, last completed trip
	TripTime       float64 `json:"trip_time" msgpack:"trip_time"`             // s, last completed trip
}

// Initial returns the snapshot visible before the first update.
func Initial() Snapshot {
	return Snapshot{
		Temperature: AmbientTemperature,
		Voltage:     NominalVoltage,
		SoC:         100,
		Wh:          PackCapacityWh,
	}
}

// Bounded returns a copy of s with every bounded field clamped to its range.
func (s Snapshot) Bounded() Snapshot {
	s.Speed = Clamp(s.Speed, MinSpeed, MaxSpeed)
	s.Temperature = Clamp(s.Temperature, MinTemperature, MaxTemperature)
	s.SoC = Clamp(s.SoC, 0, 100)
	s.Wh = Clamp(s.Wh, 0, PackCapacityWh)
	if s.Voltage < 0 {
		s.Voltage = 0
	}
	return s
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// SoCFromWh converts remaining energy to a state of charge percentage.
func SoCFromWh(wh, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return wh / capacity * 100
}
