// Package poll serves the sampled telemetry stream as server-sent events.
// The current snapshot is read on a fixed interval that is independent of
// the producer's tick rate.
package poll

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/evdash/core/telemetry"
)

// DefaultInterval is the sampling period of a stream.
const DefaultInterval = 500 * time.Millisecond

// Reader returns the current snapshot.
type Reader interface {
	Get() telemetry.Snapshot
}

// NewHandler returns a handler writing one `data: <json>` event per interval
// until the client goes away.
func NewHandler(src Reader, interval time.Duration) http.Handler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := writeEvent(w, src.Get()); err != nil {
				return
			}
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	})
}

func writeEvent(w http.ResponseWriter, s telemetry.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}
