package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/kilianp07/evdash/core/events"
	"github.com/kilianp07/evdash/core/logger"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/internal/eventbus"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Engine is the simulation clock. It owns the trip state and runs the tick
// loop on a single goroutine.
type Engine struct {
	params   Params
	profile  *DrivingProfile
	dynamics Dynamics
	energy   EnergyModel
	trip     Trip

	pub   telemetry.Publisher
	bus   eventbus.EventBus
	log   logger.Logger
	sleep Sleeper
	now   func() time.Time

	state   State
	phase   Phase
	tripNo  int
	last    telemetry.Snapshot
	summary *Summary
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventBus publishes lifecycle events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSleeper replaces the pacing function.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// NewEngine creates an engine publishing to pub. rng is the only source of
// randomness, so a seeded rng yields a reproducible run.
func NewEngine(p Params, rng *rand.Rand, pub telemetry.Publisher, opts ...Option) *Engine {
	e := &Engine{
		params:   p,
		profile:  NewDrivingProfile(rng),
		dynamics: Dynamics{Increment: p.Increment},
		energy:   NewEnergyModel(p),
		trip:     Trip{Duration: p.TripDuration},
		pub:      pub,
		sleep:    ContextSleep,
		now:      time.Now,
		last:     telemetry.Initial(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = logger.NopLogger{}
	}
	e.startTrip(0)
	return e
}

// Name implements telemetry.Producer.
func (e *Engine) Name() string { return "simulation" }

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase { return e.phase }

// Trip returns the number of the running trip, starting at 1.
func (e *Engine) Trip() int { return e.tripNo }

// LastSummary returns the summary of the most recently completed trip.
func (e *Engine) LastSummary() (Summary, bool) {
	if e.summary == nil {
		return Summary{}, false
	}
	return *e.summary, true
}

// Run drives the tick loop until ctx is cancelled. It returns nil on
// cancellation.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if e.trip.Due(&e.state) {
			e.completeTrip()
			if err := e.sleep(ctx, e.params.ResetPause); err != nil {
				return nil
			}
			e.startTrip(e.state.PrevSpeed)
		}
		snap := e.Tick()
		e.pub.Publish(snap)
		if !e.params.Realtime {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		if err := e.sleep(ctx, e.params.TickInterval()); err != nil {
			return nil
		}
	}
}

// RunTrips runs n complete trips without pacing and returns their summaries.
// Snapshots are still published.
func (e *Engine) RunTrips(ctx context.Context, n int) ([]Summary, error) {
	out := make([]Summary, 0, n)
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if e.trip.Due(&e.state) {
			out = append(out, e.completeTrip())
			e.startTrip(e.state.PrevSpeed)
			continue
		}
		e.pub.Publish(e.Tick())
	}
	return out, nil
}

// Tick advances the simulation by one increment and returns the resulting
// snapshot. It neither publishes nor checks for trip completion.
func (e *Engine) Tick() telemetry.Snapshot {
	st := &e.state
	inc := e.params.Increment

	target, stop := e.profile.Target(st, inc)
	if stop != nil {
		e.log.Infof("stoplight at t=%ds for %.1fs", int(st.T), stop.Duration)
		e.emit(events.StoplightStarted{Trip: e.tripNo, TripTime: st.T, Threshold: stop.Threshold, Duration: stop.Duration})
	}
	speed := e.dynamics.Step(st, target)
	r := e.energy.Step(st, speed)

	snap := e.last
	snap.Timestamp = telemetry.Round(st.T*1000, 1)
	snap.Speed = telemetry.Round(speed, 1)
	snap.Temperature = telemetry.Round(st.Temperature, 1)
	snap.Voltage = telemetry.Round(r.Voltage, 2)
	snap.SoC = telemetry.Round(r.SoC, 1)
	snap.Wh = telemetry.Round(st.EnergyRemainingWh, 1)
	e.last = snap

	st.PrevSpeed = speed
	st.T += inc
	return snap
}

func (e *Engine) completeTrip() Summary {
	e.phase = Resetting
	s := Summarize(&e.state)
	e.summary = &s
	e.last.TripDistance = telemetry.Round(s.DistanceKm, 2)
	e.last.TripEfficiency = telemetry.Round(s.EfficiencyWhKm, 1)
	e.last.TripTime = telemetry.Round(s.DurationS, 1)
	e.log.Infof("trip complete: %.2f km, %.0f Wh used, %.1f Wh/km", s.DistanceKm, s.EnergyUsedWh, s.EfficiencyWhKm)
	e.emit(events.TripCompleted{
		Trip:           e.tripNo,
		DistanceKm:     s.DistanceKm,
		EnergyUsedWh:   s.EnergyUsedWh,
		EfficiencyWhKm: s.EfficiencyWhKm,
		DurationS:      s.DurationS,
		At:             e.now(),
	})
	return s
}

func (e *Engine) startTrip(prevSpeed float64) {
	e.state = NewState(e.params.CapacityWh, e.profile.Schedule())
	e.state.PrevSpeed = prevSpeed
	e.phase = Running
	e.tripNo++
	e.log.Infof("starting simulated trip %d, stoplights at %v", e.tripNo, e.state.Stoplights)
	e.emit(events.TripStarted{Trip: e.tripNo, Stoplights: append([]int(nil), e.state.Stoplights...), At: e.now()})
}

func (e *Engine) emit(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
