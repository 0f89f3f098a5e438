package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/evdash/core/sim"
)

// SimulationConfig tunes the simulation producer.
type SimulationConfig struct {
	// Seed makes runs reproducible; 0 seeds from the clock.
	Seed          int64   `json:"seed"`
	TickHz        float64 `json:"tick_hz"`
	TripDurationS float64 `json:"trip_duration_s"`
	ResetPauseMs  int     `json:"reset_pause_ms"`
	Realtime      *bool   `json:"realtime"`
}

// SetDefaults fills unset fields.
func (c *SimulationConfig) SetDefaults() {
	if c.TickHz == 0 {
		c.TickHz = 60
	}
	if c.TripDurationS == 0 {
		c.TripDurationS = 330
	}
	if c.ResetPauseMs == 0 {
		c.ResetPauseMs = 2000
	}
	if c.Realtime == nil {
		rt := true
		c.Realtime = &rt
	}
}

// Validate checks the simulation configuration.
func (c SimulationConfig) Validate() error {
	if c.TickHz <= 0 {
		return fmt.Errorf("tick_hz must be positive")
	}
	if c.TripDurationS <= 0 {
		return fmt.Errorf("trip_duration_s must be positive")
	}
	if c.ResetPauseMs < 0 {
		return fmt.Errorf("reset_pause_ms must not be negative")
	}
	return nil
}

// Params converts the configuration into simulation parameters.
func (c SimulationConfig) Params() sim.Params {
	p := sim.DefaultParams()
	if c.TickHz > 0 {
		p.Increment = 1 / c.TickHz
	}
	if c.TripDurationS > 0 {
		p.TripDuration = c.TripDurationS
	}
	p.ResetPause = time.Duration(c.ResetPauseMs) * time.Millisecond
	if c.Realtime != nil {
		p.Realtime = *c.Realtime
	}
	return p
}

// SeedValue returns the configured seed or one derived from the clock.
func (c SimulationConfig) SeedValue() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
