package sim

import (
	"math"
	"math/rand"
	"sort"
)

// stoplightCandidates are the trip seconds a stoplight may be scheduled at.
var stoplightCandidates = []int{60, 90, 120, 150, 180, 210, 240}

const (
	stoplightsPerTrip   = 4
	minStoplightSeconds = 5.0
	maxStoplightSeconds = 12.0
	cruiseJitter        = 2.0
)

// PhaseSpeed returns the base target speed in km/h at trip time t. jitter
// supplies the random cruise noise and may be nil.
func PhaseSpeed(t float64, jitter func() float64) float64 {
	switch {
	case t < 25:
		return 0
	case t < 85:
		return 60 * math.Sin((t-25)/60*math.Pi/2)
	case t < 235:
		v := 60 + 5*math.Sin(t/12)
		if jitter != nil {
			v += jitter()
		}
		return v
	case t < 265:
		return 60 * (1 - (t-235)/30)
	case t < 285:
		return 0
	case t < 325:
		return 40 * math.Sin((t-285)/40*math.Pi)
	default:
		return 0
	}
}

// DrivingProfile produces target speeds including stoplight overrides.
type DrivingProfile struct {
	rng *rand.Rand
}

// NewDrivingProfile creates a profile drawing randomness from rng.
func NewDrivingProfile(rng *rand.Rand) *DrivingProfile {
	return &DrivingProfile{rng: rng}
}

// Schedule draws the stoplight times for a new trip: four distinct values
// from the candidate set, ascending.
func (p *DrivingProfile) Schedule() []int {
	perm := p.rng.Perm(len(stoplightCandidates))
	out := make([]int, stoplightsPerTrip)
	for i := range out {
		out[i] = stoplightCandidates[perm[i]]
	}
	sort.Ints(out)
	return out
}

func (p *DrivingProfile) jitter() float64 {
	return p.rng.Float64()*2*cruiseJitter - cruiseJitter
}

// Stop describes a stoplight that just became active.
type Stop struct {
	Threshold int
	Duration  float64
}

// Target returns the target speed for st.T. It advances the stoplight state
// by inc and reports a non-nil Stop on the tick a stoplight activates.
func (p *DrivingProfile) Target(st *State, inc float64) (float64, *Stop) {
	target := PhaseSpeed(st.T, p.jitter)

	var started *Stop
	if !st.StoplightActive && len(st.Stoplights) > 0 && st.T > float64(st.Stoplights[0]) {
		st.StoplightActive = true
		st.StoplightRemaining = minStoplightSeconds + p.rng.Float64()*(maxStoplightSeconds-minStoplightSeconds)
		started = &Stop{Threshold: st.Stoplights[0], Duration: st.StoplightRemaining}
	}
	if st.StoplightActive {
		st.StoplightRemaining -= inc
		target = 0
		if st.StoplightRemaining <= 0 {
			st.Stoplights = st.Stoplights[1:]
			st.StoplightActive = false
		}
	}
	return target, started
}
