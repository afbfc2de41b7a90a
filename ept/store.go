package ept

import (
	"github.com/erasmus-gp/egpcore/dedup"
	"github.com/erasmus-gp/egpcore/typedef"
)

// Store is the thread-safe, process-wide Endpoint-Type Store (spec §3.3):
// "a thread-safe interning set of immutable EPTs. add(tup) returns the
// canonical instance: if an equal tuple is present, return it; else
// insert a copy." It is backed by a weak-value map keyed by content hash,
// approximated here by dedup.WeakSet keyed on the EPT's canonical string.
type Store struct {
	weak *dedup.WeakSet[string, *EPT]
	reg  *typedef.Registry
}

// NewStore returns an empty Store that resolves names/UIDs against reg.
func NewStore(reg *typedef.Registry) *Store {
	return &Store{
		weak: dedup.NewWeakSet[string, *EPT](),
		reg:  reg,
	}
}

// Add interns elems, returning the canonical EPT instance: an equal tuple
// already present is returned unchanged; otherwise a new EPT is built,
// validated, and inserted.
func (s *Store) Add(elems []*typedef.TypesDef) (*EPT, error) {
	e, err := New(elems)
	if err != nil {
		return nil, err
	}
	canonical, _ := s.weak.Add(e)
	return canonical, nil
}

// AddNames interns the EPT denoted by a flat list of type names.
func (s *Store) AddNames(names []string) (*EPT, error) {
	e, err := FromNames(s.reg, names)
	if err != nil {
		return nil, err
	}
	canonical, _ := s.weak.Add(e)
	return canonical, nil
}

// AddUIDs interns the EPT denoted by a flat list of UIDs.
func (s *Store) AddUIDs(uids []typedef.UID) (*EPT, error) {
	e, err := FromUIDs(s.reg, uids)
	if err != nil {
		return nil, err
	}
	canonical, _ := s.weak.Add(e)
	return canonical, nil
}

// AddTemplate interns the EPT denoted by a template type string.
func (s *Store) AddTemplate(template string) (*EPT, error) {
	e, err := FromTemplate(s.reg, template)
	if err != nil {
		return nil, err
	}
	canonical, _ := s.weak.Add(e)
	return canonical, nil
}

// Lookup returns the already-interned EPT for canonical string form key,
// without affecting its reference count.
func (s *Store) Lookup(canonical string) (*EPT, bool) {
	return s.weak.Lookup(canonical)
}

// Release drops one reference to the EPT keyed by canonical, making it
// eligible for scavenging once its refcount reaches zero and it ages out.
func (s *Store) Release(canonical string) {
	s.weak.Release(canonical)
}

// Scavenge evicts entries with zero references that have not been
// touched in more than maxAge epochs, advancing the epoch first.
func (s *Store) Scavenge(maxAge int64) int {
	s.weak.Tick()
	return s.weak.Scavenge(maxAge)
}

// Len reports the number of currently interned EPTs.
func (s *Store) Len() int { return s.weak.Len() }

// Info reports interning hit/miss counters.
func (s *Store) Info() (hits, misses int64) { return s.weak.Info() }
