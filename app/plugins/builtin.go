package plugins

import (
	"context"
	"math/rand"
	"time"

	"github.com/kilianp07/evdash/config"
	"github.com/kilianp07/evdash/core/bridge"
	"github.com/kilianp07/evdash/core/sim"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/infra/logger"
	"github.com/kilianp07/evdash/infra/mqtt"
	"github.com/kilianp07/evdash/infra/redis"
	"github.com/kilianp07/evdash/infra/serial"
)

func init() {
	RegisterProducer(config.ModeSimulation, func(cfg *config.Config, deps Deps) (telemetry.Producer, error) {
		seed := cfg.Simulation.SeedValue()
		log := logger.New("simulation")
		log.Infof("simulation seed %d", seed)
		return sim.NewEngine(cfg.Simulation.Params(), rand.New(rand.NewSource(seed)), deps.Hub,
			sim.WithEventBus(deps.Bus),
			sim.WithLogger(log),
		), nil
	})
	RegisterProducer(config.ModeSerial, func(cfg *config.Config, deps Deps) (telemetry.Producer, error) {
		return serial.NewAdapter(cfg.Source.Serial, nil, deps.Hub, deps.Hub.Store(), deps.Bus, logger.New("serial")), nil
	})

	RegisterBridge("mqtt", func(_ context.Context, cfg *config.Config) (bridge.Forwarder, time.Duration, func(), bool, error) {
		mc := cfg.Bridges.MQTT
		if !mc.Enabled {
			return nil, 0, nil, false, nil
		}
		b, err := mqtt.NewBridge(mc, cfg.Vehicle.ID)
		if err != nil {
			return nil, 0, nil, true, err
		}
		return b, time.Duration(mc.MinIntervalMs) * time.Millisecond, b.Close, true, nil
	})
	RegisterBridge("redis", func(ctx context.Context, cfg *config.Config) (bridge.Forwarder, time.Duration, func(), bool, error) {
		rc := cfg.Bridges.Redis
		if !rc.Enabled {
			return nil, 0, nil, false, nil
		}
		b, err := redis.NewBridge(ctx, rc, cfg.Vehicle.ID)
		if err != nil {
			return nil, 0, nil, true, err
		}
		return b, time.Duration(rc.MinIntervalMs) * time.Millisecond, func() { _ = b.Close() }, true, nil
	})
}
