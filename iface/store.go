package iface

import "github.com/erasmus-gp/egpcore/dedup"

// DedupKey implements dedup.Keyed for an already-frozen Interface, keyed
// by its persistent content hash. Calling DedupKey on an unfrozen
// Interface is a programmer error the caller must avoid: only frozen
// interfaces are interned (spec §4.3: "Freezing an Interface ... computes
// a persistent 64-bit hash").
func (f *Interface) DedupKey() uint64 { return f.hash }

// Store is the thread-safe, process-wide Interface Store (spec §4.3):
// interning frozen Interfaces by their persistent content hash so that
// equal interfaces share one instance.
type Store struct {
	weak *dedup.WeakSet[uint64, *Interface]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{weak: dedup.NewWeakSet[uint64, *Interface]()}
}

// Add interns a frozen Interface, returning the canonical instance.
func (s *Store) Add(f *Interface) (*Interface, error) {
	if !f.IsFrozen() {
		if err := f.Freeze(); err != nil {
			return nil, err
		}
	}
	canonical, _ := s.weak.Add(f)
	return canonical, nil
}

// Lookup returns the interned interface for a content hash, if present.
func (s *Store) Lookup(hash uint64) (*Interface, bool) {
	return s.weak.Lookup(hash)
}

// Release drops one reference to the interface keyed by hash.
func (s *Store) Release(hash uint64) {
	s.weak.Release(hash)
}

// Scavenge evicts zero-refcount entries older than maxAge epochs.
func (s *Store) Scavenge(maxAge int64) int {
	s.weak.Tick()
	return s.weak.Scavenge(maxAge)
}

// Len reports the number of currently interned interfaces.
func (s *Store) Len() int { return s.weak.Len() }

// Info reports interning hit/miss counters.
func (s *Store) Info() (hits, misses int64) { return s.weak.Info() }
