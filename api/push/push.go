// Package push serves the realtime telemetry stream over WebSocket. Every
// snapshot broadcast by the hub is sent to each connected client as
// {"event":"telemetry","data":<snapshot>}.
package push

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilianp07/evdash/core/logger"
	"github.com/kilianp07/evdash/core/telemetry"
)

// EventTelemetry names the push event carrying a snapshot.
const EventTelemetry = "telemetry"

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the envelope written to clients.
type Message struct {
	Event string             `json:"event"`
	Data  telemetry.Snapshot `json:"data"`
}

// Source is the broadcaster a Handler subscribes to.
type Source interface {
	Subscribe() <-chan telemetry.Snapshot
	Unsubscribe(<-chan telemetry.Snapshot)
}

// Handler upgrades requests to WebSocket connections and streams snapshots.
type Handler struct {
	src      Source
	upgrader websocket.Upgrader
	clients  atomic.Int64
	log      logger.Logger
}

// NewHandler creates a push handler. Cross-origin connections are accepted.
func NewHandler(src Source, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{
		src: src,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Clients reports the number of open connections.
func (h *Handler) Clients() int { return int(h.clients.Load()) }

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugf("websocket upgrade failed: %v", err)
		return
	}
	h.clients.Add(1)
	defer h.clients.Add(-1)
	h.log.Debugf("push client connected from %s", r.RemoteAddr)

	sub := h.src.Subscribe()
	defer h.src.Unsubscribe(sub)

	done := make(chan struct{})
	go h.readLoop(conn, done)
	h.writeLoop(conn, sub, done)
	_ = conn.Close()
	h.log.Debugf("push client %s disconnected", r.RemoteAddr)
}

// readLoop discards client frames and signals done when the connection
// closes.
func (h *Handler) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, sub <-chan telemetry.Snapshot, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case snap, ok := <-sub:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Message{Event: EventTelemetry, Data: snap}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
