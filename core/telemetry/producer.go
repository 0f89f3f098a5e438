package telemetry

import "context"

// Publisher accepts freshly produced snapshots.
type Publisher interface {
	Publish(Snapshot) int
}

// Producer fills the store. Exactly one producer runs per process.
type Producer interface {
	// Name identifies the producer in logs and health output.
	Name() string
	// Run produces snapshots until ctx is cancelled or the source fails.
	Run(ctx context.Context) error
}
