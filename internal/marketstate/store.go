// Package marketstate reconciles the inbound delta stream into the
// current market snapshot.
//
// Apply is a pure state-transition function: the inbound message path
// calls it synchronously, so merges never interleave with each other.
// Stored snapshots are copy-on-write, which is what makes the read side
// safe without readers taking the write lock.
package marketstate

import (
	"sync"

	"github.com/audiospy/sonifier/internal/model"
)

// Apply merges delta into current and returns the resulting snapshot.
//
// Every key present in delta overwrites the same key in current; keys
// absent from delta are preserved. The merge is total: it never fails
// regardless of delta shape. Neither input is mutated. An empty delta
// returns current unchanged.
func Apply(current model.Snapshot, delta model.Delta) model.Snapshot {
	if len(delta) == 0 {
		return current
	}

	next := current.Clone()
	for k, v := range delta {
		next[k] = v
	}
	return next
}

// Store holds the latest snapshot. Writes come from the single inbound
// message handling goroutine; reads come from the HTTP surface.
type Store struct {
	mu     sync.RWMutex
	latest model.Snapshot
}

// NewStore creates a store with an empty snapshot.
func NewStore() *Store {
	return &Store{latest: model.Snapshot{}}
}

// Apply merges delta into the stored snapshot and returns the new value.
func (s *Store) Apply(delta model.Delta) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = Apply(s.latest, delta)
	return s.latest
}

// Latest returns the current snapshot. The returned map is shared and
// must not be mutated; Apply never modifies a snapshot it has handed out.
func (s *Store) Latest() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
