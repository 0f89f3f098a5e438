// Package app wires configuration, the single telemetry producer, the HTTP
// surface, metrics and bridges into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/evdash/api"
	"github.com/kilianp07/evdash/app/plugins"
	"github.com/kilianp07/evdash/config"
	"github.com/kilianp07/evdash/core/bridge"
	"github.com/kilianp07/evdash/core/events"
	coremetrics "github.com/kilianp07/evdash/core/metrics"
	coremon "github.com/kilianp07/evdash/core/monitoring"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/infra/logger"
	"github.com/kilianp07/evdash/infra/metrics"
	inframon "github.com/kilianp07/evdash/infra/monitoring"
	"github.com/kilianp07/evdash/internal/eventbus"
)

// pushBuffer is the per-subscriber queue depth of the snapshot fan-out.
const pushBuffer = 8

// Service runs one producer and serves its telemetry.
type Service struct {
	cfg      *config.Config
	hub      *telemetry.Hub
	bus      *eventbus.Bus
	producer telemetry.Producer
	running  atomic.Bool
	server   *api.Server
	sink     coremetrics.MetricsSink
	log      logger.Logger

	mu      sync.Mutex
	closers []func()
	wg      sync.WaitGroup
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	log := logger.New("service")
	hub := telemetry.NewHub(telemetry.NewStore(telemetry.Initial()), pushBuffer)
	bus := eventbus.New()

	producer, err := plugins.NewProducer(cfg, plugins.Deps{Hub: hub, Bus: bus})
	if err != nil {
		return nil, fmt.Errorf("producer: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	s := &Service{cfg: cfg, hub: hub, bus: bus, producer: producer, sink: sink, log: log}
	s.server = api.NewServer(cfg.Server, hub, s)
	return s, nil
}

// Name reports the producer name.
func (s *Service) Name() string { return s.producer.Name() }

// Running reports whether the producer loop is alive.
func (s *Service) Running() bool { return s.running.Load() }

// Hub returns the snapshot hub.
func (s *Service) Hub() *telemetry.Hub { return s.hub }

// Addr returns the HTTP listener address once Run has started it.
func (s *Service) Addr() net.Addr { return s.server.Addr() }

// Run starts every component and blocks until ctx is cancelled. A producer
// failure is reported but does not stop the service: clients keep receiving
// the last snapshot and /healthz turns stale.
func (s *Service) Run(ctx context.Context) error {
	vehicleID := s.cfg.Vehicle.ID
	metrics.StartEventCollector(ctx, s.bus, s.sink, vehicleID)
	metrics.StartSnapshotCollector(ctx, s.hub, s.sink, vehicleID, s.server.Clients)
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			return fmt.Errorf("prom server: %w", err)
		}
	}
	if err := s.startBridges(ctx); err != nil {
		return err
	}
	if err := s.server.Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	s.running.Store(true)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runProducer(ctx)
	}()

	<-ctx.Done()
	s.wg.Wait()
	return nil
}

func (s *Service) runProducer(ctx context.Context) {
	name := s.producer.Name()
	s.bus.Publish(events.ProducerStarted{Producer: name})
	s.log.Infof("starting %s producer", name)
	err := coremon.Guard(map[string]string{"module": "producer", "producer": name}, func() error {
		return s.producer.Run(ctx)
	})
	s.running.Store(false)
	s.bus.Publish(events.ProducerStopped{Producer: name, Err: err})
	var perr *coremon.PanicError
	switch {
	case errors.As(err, &perr):
		s.log.Errorf("%s producer crashed: %v", name, err)
	case err != nil:
		s.log.Errorf("%s producer stopped: %v", name, err)
		coremon.CaptureException(err, map[string]string{"module": "producer", "producer": name})
	default:
		s.log.Infof("%s producer stopped", name)
	}
}

func (s *Service) startBridges(ctx context.Context) error {
	for _, name := range plugins.BridgeNames() {
		f, minInterval, closer, ok, err := plugins.Bridges[name](ctx, s.cfg)
		if err != nil {
			return fmt.Errorf("%s bridge: %w", name, err)
		}
		if !ok {
			continue
		}
		s.mu.Lock()
		s.closers = append(s.closers, closer)
		s.mu.Unlock()
		s.log.Infof("%s bridge enabled", name)
		s.wg.Add(1)
		go func(f bridge.Forwarder) {
			defer s.wg.Done()
			st := bridge.Run(ctx, s.hub, f, minInterval, logger.New(f.Name()+"_bridge"))
			s.log.Infof("%s bridge stopped: %d forwarded, %d skipped, %d failed", f.Name(), st.Forwarded, st.Skipped, st.Failed)
		}(f)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.hub.Close()
	s.bus.Close()
	s.mu.Lock()
	for _, c := range s.closers {
		if c != nil {
			c()
		}
	}
	s.closers = nil
	s.mu.Unlock()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return logger.Close()
}
