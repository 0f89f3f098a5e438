package sim

// Phase is the lifecycle position of the engine.
type Phase int

const (
	Running Phase = iota
	Resetting
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Resetting:
		return "resetting"
	default:
		return "unknown"
	}
}

// Summary describes a completed trip. Values are unrounded.
type Summary struct {
	DistanceKm     float64
	EnergyUsedWh   float64
	EfficiencyWhKm float64
	DurationS      float64
}

// Trip decides when a trip ends and what it achieved.
type Trip struct {
	Duration float64
}

// Due reports whether st has reached the end of the trip.
func (tr Trip) Due(st *State) bool {
	return st.T >= tr.Duration
}

// Summarize computes the trip summary from st. Efficiency is zero when no
// distance was covered.
func Summarize(st *State) Summary {
	s := Summary{
		DistanceKm:   st.DistanceKm,
		EnergyUsedWh: st.EnergyUsedWh,
		DurationS:    st.T,
	}
	if st.DistanceKm > 0 {
		s.EfficiencyWhKm = st.EnergyUsedWh / st.DistanceKm
	}
	return s
}
