package cgraph

import "github.com/erasmus-gp/egpcore/dedup"

// ConnectionStore is the thread-safe interning set over Connection values
// (spec §4.9: "Weak-value dedup ... Used for Interfaces, EPTs,
// Connections"). CGraph.Stabilize and ConnectAll build their own
// connection list directly; ConnectionStore exists for callers (e.g. the
// worker facade) that want every connection across many graphs to share
// one canonical instance.
type ConnectionStore struct {
	weak *dedup.WeakSet[Connection, Connection]
}

// NewConnectionStore returns an empty ConnectionStore.
func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{weak: dedup.NewWeakSet[Connection, Connection]()}
}

// Add interns c, returning the canonical Connection value.
func (s *ConnectionStore) Add(c Connection) Connection {
	canonical, _ := s.weak.Add(c)
	return canonical
}

// Len reports the number of currently interned connections.
func (s *ConnectionStore) Len() int { return s.weak.Len() }

// Info reports interning hit/miss counters.
func (s *ConnectionStore) Info() (hits, misses int64) { return s.weak.Info() }
