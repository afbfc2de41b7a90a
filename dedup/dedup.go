// Package dedup implements the two interning strategies the core uses
// to keep one canonical copy of a value while many places reference it:
// a refcounted weak-value set (for EPTs, Interfaces, Connections) and a
// bounded LRU set (for short-lived but very hot values such as endpoint
// references).
//
// Go has no weak references, so the weak-value set is realised per the
// engineering design notes: an explicit reference count plus an
// epoch-based scavenger. Callers that intern a value must Release it
// when they drop their last strong reference; the scavenger reclaims
// zero-refcount entries that have aged past a configurable number of
// epochs, tolerating callers that forget an immediate Release.
package dedup

import "sync"

// Keyed is implemented by values that can be content-addressed.
// Two values that compare equal under DedupKey must be semantically
// interchangeable: the set returns whichever was inserted first.
type Keyed[K comparable] interface {
	DedupKey() K
}

type weakEntry[V any] struct {
	value     V
	refs      int64
	lastEpoch int64
}

// WeakSet interns values of type V keyed by K, approximating a
// weak-value map with explicit refcounting.
type WeakSet[K comparable, V Keyed[K]] struct {
	mu      sync.Mutex
	entries map[K]*weakEntry[V]
	epoch   int64

	hits   int64
	misses int64
}

// NewWeakSet returns an empty WeakSet.
func NewWeakSet[K comparable, V Keyed[K]]() *WeakSet[K, V] {
	return &WeakSet[K, V]{entries: make(map[K]*weakEntry[V])}
}

// Add interns v: if an entry with the same DedupKey already exists, its
// reference count is incremented and the existing canonical value is
// returned; otherwise v becomes canonical. The bool result reports
// whether v was newly inserted (false means an existing value, possibly
// unequal in all but key, was returned instead).
func (s *WeakSet[K, V]) Add(v V) (V, bool) {
	key := v.DedupKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.refs++
		e.lastEpoch = s.epoch
		s.hits++
		return e.value, false
	}
	s.entries[key] = &weakEntry[V]{value: v, refs: 1, lastEpoch: s.epoch}
	s.misses++
	return v, true
}

// Lookup returns the canonical value for key without incrementing its
// reference count, and whether it is present.
func (s *WeakSet[K, V]) Lookup(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Release decrements the reference count for key. A zero or negative
// count makes the entry eligible for the next Scavenge, but it is not
// removed immediately: late Releases and re-Adds within the same epoch
// window are cheap.
func (s *WeakSet[K, V]) Release(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.refs--
	}
}

// Tick advances the epoch counter. Callers tick once per logical unit
// of work (e.g. once per stabilised CGraph); Scavenge uses the epoch to
// decide how long a zero-refcount entry has been idle.
func (s *WeakSet[K, V]) Tick() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

// Scavenge removes entries with a non-positive reference count whose
// lastEpoch is more than maxAge epochs behind the current epoch.
// Returns the number of entries removed.
func (s *WeakSet[K, V]) Scavenge(maxAge int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if e.refs <= 0 && s.epoch-e.lastEpoch > maxAge {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of currently interned entries, live or stale.
func (s *WeakSet[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Info reports cache hit/miss counters, mirroring ObjectDeduplicator.info().
func (s *WeakSet[K, V]) Info() (hits, misses int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}
