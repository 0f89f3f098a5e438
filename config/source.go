package config

import (
	"fmt"

	"github.com/kilianp07/evdash/infra/serial"
)

// Producer modes.
const (
	ModeSimulation = "simulation"
	ModeSerial     = "serial"
)

// SourceConfig selects the single telemetry producer.
type SourceConfig struct {
	Mode string `json:"mode"`
	// Preset fills the serial device and baud rate ("prod" or "dev").
	Preset string        `json:"preset"`
	Serial serial.Config `json:"serial"`
}

// SetDefaults fills unset fields, applying the preset first.
func (c *SourceConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeSimulation
	}
	if p, ok := serial.Preset(c.Preset); ok {
		if c.Serial.Device == "" {
			c.Serial.Device = p.Device
		}
		if c.Serial.Baud == 0 {
			c.Serial.Baud = p.Baud
		}
	}
	c.Serial.SetDefaults()
}

// Validate checks the source configuration.
func (c SourceConfig) Validate() error {
	if c.Preset != "" {
		if _, ok := serial.Preset(c.Preset); !ok {
			return fmt.Errorf("unknown preset %q", c.Preset)
		}
	}
	switch c.Mode {
	case ModeSimulation:
		return nil
	case ModeSerial:
		return c.Serial.Validate()
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
}
