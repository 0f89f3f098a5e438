// Package api assembles the HTTP surface: the push and poll telemetry
// streams, the latest snapshot, liveness and the optional dashboard assets.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/evdash/api/poll"
	"github.com/kilianp07/evdash/api/push"
	"github.com/kilianp07/evdash/api/status"
	"github.com/kilianp07/evdash/config"
	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/infra/logger"
)

// Server serves the telemetry endpoints.
type Server struct {
	cfg  config.ServerConfig
	mux  *http.ServeMux
	push *push.Handler
	log  logger.Logger

	mu   sync.Mutex
	addr net.Addr
}

// NewServer registers all routes. producer may be nil.
func NewServer(cfg config.ServerConfig, hub *telemetry.Hub, producer status.ProducerInfo) *Server {
	cfg.SetDefaults()
	log := logger.New("http")
	s := &Server{
		cfg:  cfg,
		mux:  http.NewServeMux(),
		push: push.NewHandler(hub, logger.New("push")),
		log:  log,
	}
	health := status.HealthChecker{
		Source:      hub.Store(),
		Producer:    producer,
		StaleAfter:  cfg.StaleAfter(),
		Subscribers: s.push.Clients,
		Started:     time.Now(),
	}
	s.mux.Handle(cfg.WSPath, s.push)
	s.mux.Handle(cfg.PollPath, poll.NewHandler(hub.Store(), cfg.PollInterval()))
	s.mux.Handle("/api/telemetry/latest", status.NewLatestHandler(hub.Store()))
	s.mux.Handle("/healthz", status.NewHealthHandler(health))
	if cfg.StaticDir != "" {
		s.mux.Handle("/", NewStaticHandler(cfg.StaticDir))
	}
	return s
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler { return withCORS(s.mux) }

// Clients reports connected push clients.
func (s *Server) Clients() int { return s.push.Clients() }

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the listener and serves in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Poll streams end with the service context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http server shutdown: %v", err)
			_ = srv.Close()
		}
	}()
	go func() {
		s.log.Infof("serving telemetry on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("http server: %v", err)
		}
	}()
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
