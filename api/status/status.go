// Package status exposes the latest snapshot and a liveness check. The
// streams never report staleness themselves; clients that care poll
// /healthz.
package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/evdash/core/telemetry"
)

// Source reports the current snapshot and when it was last replaced.
type Source interface {
	Get() telemetry.Snapshot
	LastUpdate() time.Time
	Writes() uint64
}

// ProducerInfo describes the active producer.
type ProducerInfo interface {
	Name() string
	Running() bool
}

// Health is the /healthz response body.
type Health struct {
	Status      string     `json:"status"`
	Producer    string     `json:"producer"`
	Running     bool       `json:"running"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
	AgeMs       int64      `json:"age_ms"`
	Updates     uint64     `json:"updates"`
	Subscribers int        `json:"subscribers"`
}

// NewLatestHandler serves the current snapshot as JSON.
func NewLatestHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.Get()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// HealthChecker evaluates producer liveness.
type HealthChecker struct {
	Source      Source
	Producer    ProducerInfo
	StaleAfter  time.Duration
	Subscribers func() int
	Now         func() time.Time
	// Started is used as the reference time before the first update.
	Started time.Time
}

// Check computes the current health.
func (c HealthChecker) Check() Health {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	h := Health{Status: "ok", Updates: c.Source.Writes()}
	if c.Producer != nil {
		h.Producer = c.Producer.Name()
		h.Running = c.Producer.Running()
	}
	if c.Subscribers != nil {
		h.Subscribers = c.Subscribers()
	}
	ref := c.Source.LastUpdate()
	if !ref.IsZero() {
		h.LastUpdate = &ref
	} else {
		ref = c.Started
	}
	if !ref.IsZero() {
		h.AgeMs = now.Sub(ref).Milliseconds()
	}
	stale := c.StaleAfter > 0 && !ref.IsZero() && now.Sub(ref) > c.StaleAfter
	if stale || (c.Producer != nil && !h.Running) {
		h.Status = "stale"
	}
	return h
}

// NewHealthHandler serves Check as JSON, with 503 when stale.
func NewHealthHandler(c HealthChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := c.Check()
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(h)
	})
}
