// Package plugins maps configuration names to producer and bridge
// constructors. Exactly one producer is built per process.
package plugins

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/evdash/config"
	"github.com/kilianp07/evdash/core/bridge"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/internal/eventbus"
)

// Deps are the shared components handed to factories.
type Deps struct {
	Hub *telemetry.Hub
	Bus eventbus.EventBus
}

// ProducerFactory builds the telemetry producer for a source mode.
type ProducerFactory func(cfg *config.Config, deps Deps) (telemetry.Producer, error)

// BridgeFactory builds a forwarder. ok is false when the bridge is disabled.
// The returned closer releases the bridge's connection.
type BridgeFactory func(ctx context.Context, cfg *config.Config) (f bridge.Forwarder, minInterval time.Duration, closer func(), ok bool, err error)

var (
	Producers = map[string]ProducerFactory{}
	Bridges   = map[string]BridgeFactory{}
)

func RegisterProducer(mode string, f ProducerFactory) { Producers[mode] = f }
func RegisterBridge(name string, f BridgeFactory)     { Bridges[name] = f }

// NewProducer builds the producer registered for cfg.Source.Mode.
func NewProducer(cfg *config.Config, deps Deps) (telemetry.Producer, error) {
	f, ok := Producers[cfg.Source.Mode]
	if !ok {
		return nil, fmt.Errorf("no producer registered for mode %q", cfg.Source.Mode)
	}
	return f(cfg, deps)
}

// BridgeNames returns the registered bridge names in order.
func BridgeNames() []string {
	names := make([]string, 0, len(Bridges))
	for n := range Bridges {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
