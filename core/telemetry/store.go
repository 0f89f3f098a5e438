package telemetry

import (
	"sync/atomic"
	"time"
)

// Store holds the latest snapshot. The producer is the only writer; any
// number of goroutines may read concurrently.
type Store struct {
	cur     atomic.Pointer[Snapshot]
	updated atomic.Int64
	writes  atomic.Uint64
}

// NewStore creates a store holding initial. The initial value does not
// count as an update.
func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.cur.Store(&initial)
	return s
}

// Get returns a copy of the current snapshot.
func (s *Store) Get() Snapshot {
	return *s.cur.Load()
}

// Replace makes snap the current snapshot.
func (s *Store) Replace(snap Snapshot) {
	s.cur.Store(&snap)
	s.updated.Store(time.Now().UnixNano())
	s.writes.Add(1)
}

// LastUpdate reports when Replace was last called. It is the zero time if
// nothing was written yet.
func (s *Store) LastUpdate() time.Time {
	n := s.updated.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Writes returns the number of Replace calls so far.
func (s *Store) Writes() uint64 { return s.writes.Load() }
