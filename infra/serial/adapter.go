// Package serial ingests telemetry records from a serial device.
package serial

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	goserial "github.com/tarm/goserial"

	"github.com/kilianp07/evdash/core/events"
	"github.com/kilianp07/evdash/core/logger"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/internal/eventbus"
)

// Config describes the serial device.
type Config struct {
	Device     string  `json:"device"`
	Baud       int     `json:"baud"`
	Delimiter  string  `json:"delimiter"`
	CapacityWh float64 `json:"capacity_wh"`
	// RetryDelayMs is the wait between failed open attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
}

// Preset returns the device settings for a named environment. ok is false
// for unknown names.
func Preset(name string) (Config, bool) {
	switch name {
	case "prod":
		return Config{Device: "/dev/ttyUSB0", Baud: 115200}, true
	case "dev":
		return Config{Device: "COM3", Baud: 9600}, true
	}
	return Config{}, false
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Baud == 0 {
		c.Baud = 115200
	}
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
	if c.CapacityWh == 0 {
		c.CapacityWh = telemetry.PackCapacityWh
	}
	if c.RetryDelayMs == 0 {
		c.RetryDelayMs = 5000
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device is required")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("serial baud must be positive")
	}
	if c.CapacityWh <= 0 {
		return fmt.Errorf("serial capacity_wh must be positive")
	}
	return nil
}

// Opener opens the underlying byte stream.
type Opener func() (io.ReadCloser, error)

// DeviceOpener opens cfg.Device with tarm/goserial.
func DeviceOpener(cfg Config) Opener {
	return func() (io.ReadCloser, error) {
		return goserial.OpenPort(&goserial.Config{Name: cfg.Device, Baud: cfg.Baud})
	}
}

// Stats counts ingested lines.
type Stats struct {
	Accepted int
	Dropped  int
}

// Adapter is the serial telemetry producer.
type Adapter struct {
	cfg    Config
	open   Opener
	parser Parser
	pub    telemetry.Publisher
	store  *telemetry.Store
	bus    eventbus.EventBus
	log    logger.Logger
}

// NewAdapter creates an adapter. store supplies the previous snapshot that
// each record is merged onto; bus and log may be nil.
func NewAdapter(cfg Config, open Opener, pub telemetry.Publisher, store *telemetry.Store, bus eventbus.EventBus, log logger.Logger) *Adapter {
	cfg.SetDefaults()
	if open == nil {
		open = DeviceOpener(cfg)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Adapter{
		cfg:    cfg,
		open:   open,
		parser: NewParser(cfg.Delimiter, cfg.CapacityWh),
		pub:    pub,
		store:  store,
		bus:    bus,
		log:    log,
	}
}

// Name implements telemetry.Producer.
func (a *Adapter) Name() string { return "serial" }

// Run reads the device until ctx is cancelled, reopening it after read
// failures.
func (a *Adapter) Run(ctx context.Context) error {
	retry := time.Duration(a.cfg.RetryDelayMs) * time.Millisecond
	for {
		a.log.Infof("opening serial port %s at %d baud", a.cfg.Device, a.cfg.Baud)
		rc, err := a.open()
		if err != nil {
			a.log.Errorf("failed to open serial port %s: %v", a.cfg.Device, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retry):
				continue
			}
		}
		stats, err := a.Ingest(ctx, rc)
		a.log.Infof("serial stream closed: %d accepted, %d dropped", stats.Accepted, stats.Dropped)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			a.log.Warnf("serial read error: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

// Ingest reads records from r until EOF, a read error or ctx cancellation.
// Malformed lines are dropped. r is closed on return.
func (a *Adapter) Ingest(ctx context.Context, r io.ReadCloser) (Stats, error) {
	var stats Stats
	stop := context.AfterFunc(ctx, func() { _ = r.Close() })
	defer func() {
		if stop() {
			_ = r.Close()
		}
	}()

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		snap, err := a.parser.Parse(line, a.store.Get())
		if errors.Is(err, ErrEmptyRecord) {
			continue
		}
		if err != nil {
			stats.Dropped++
			a.log.Debugw("serial record dropped", map[string]any{"line": line, "reason": err.Error()})
			if a.bus != nil {
				a.bus.Publish(events.RecordDropped{Reason: err.Error(), Line: line})
			}
			continue
		}
		stats.Accepted++
		a.pub.Publish(snap)
		if a.bus != nil {
			a.bus.Publish(events.RecordAccepted{})
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return stats, fmt.Errorf("read serial: %w", err)
	}
	return stats, nil
}
