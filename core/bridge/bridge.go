// Package bridge forwards published telemetry snapshots to external systems.
// A bridge is just another push subscriber: it never slows the producer and
// may skip snapshots when it falls behind.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/evdash/core/logger"
	"github.com/kilianp07/evdash/core/monitoring"
	"github.com/kilianp07/evdash/core/telemetry"
)

// ErrNotConnected is returned by forwarders whose transport is down.
var ErrNotConnected = errors.New("bridge not connected")

// Forwarder delivers one snapshot to an external system.
type Forwarder interface {
	Name() string
	Forward(ctx context.Context, s telemetry.Snapshot) error
}

// Source is a broadcaster of telemetry snapshots.
type Source interface {
	Subscribe() <-chan telemetry.Snapshot
	Unsubscribe(<-chan telemetry.Snapshot)
}

// Stats summarises a bridge run.
type Stats struct {
	Forwarded int
	Skipped   int
	Failed    int
}

// logEvery bounds how often repeated forward failures are logged.
const logEvery = 100

// Run subscribes to src and forwards snapshots to f until ctx is done or src
// closes. Snapshots arriving less than minInterval after the last forwarded
// one are skipped.
func Run(ctx context.Context, src Source, f Forwarder, minInterval time.Duration, log logger.Logger) Stats {
	if log == nil {
		log = logger.NopLogger{}
	}
	var (
		stats  Stats
		last   time.Time
		streak int
	)
	sub := src.Subscribe()
	defer src.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return stats
		case snap, ok := <-sub:
			if !ok {
				return stats
			}
			now := time.Now()
			if minInterval > 0 && !last.IsZero() && now.Sub(last) < minInterval {
				stats.Skipped++
				continue
			}
			last = now
			if err := f.Forward(ctx, snap); err != nil {
				stats.Failed++
				if streak%logEvery == 0 {
					log.Warnf("%s forward failed (%d in a row): %v", f.Name(), streak+1, err)
					monitoring.CaptureException(err, map[string]string{"module": f.Name()})
				}
				streak++
				continue
			}
			if streak > 0 {
				log.Infof("%s forwarding recovered after %d failures", f.Name(), streak)
				streak = 0
			}
			stats.Forwarded++
		}
	}
}
