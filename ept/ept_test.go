package ept

import (
	"testing"

	"github.com/erasmus-gp/egpcore/typedef"
)

func mustUID(t *testing.T, f typedef.Fields) typedef.UID {
	t.Helper()
	u, err := typedef.Pack(f)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func testRegistry(t *testing.T) (*typedef.Registry, *typedef.TypesDef, *typedef.TypesDef) {
	t.Helper()
	r := typedef.NewRegistry(nil)
	object, err := typedef.New("object", mustUID(t, typedef.Fields{XUID: 0}), nil, nil, nil, []string{"int", "list"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(object); err != nil {
		t.Fatal(err)
	}
	intTD, err := typedef.New("int", mustUID(t, typedef.Fields{XUID: 1}), nil, nil, []string{"object"}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(intTD); err != nil {
		t.Fatal(err)
	}
	list, err := typedef.New("list", mustUID(t, typedef.Fields{TT: 1, XUID: 2}), nil, nil, []string{"object"}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(list); err != nil {
		t.Fatal(err)
	}
	return r, intTD, list
}

func TestNewRejectsArityMismatch(t *testing.T) {
	_, intTD, list := testRegistry(t)
	if _, err := New([]*typedef.TypesDef{list}); err == nil {
		t.Fatal("expected error: list has arity 1 but 0 arguments supplied")
	}
	if _, err := New([]*typedef.TypesDef{intTD, intTD}); err == nil {
		t.Fatal("expected error: int has arity 0 but 1 argument supplied")
	}
}

func TestNewBuildsCanonicalString(t *testing.T) {
	_, intTD, list := testRegistry(t)
	e, err := New([]*typedef.TypesDef{list, intTD})
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "list[int]" {
		t.Errorf("expected canonical string \"list[int]\", got %q", e.String())
	}
	if e.Head().Name() != "list" {
		t.Errorf("expected head to be list, got %s", e.Head().Name())
	}
}

func TestStoreAddIsIdempotentForEqualTuples(t *testing.T) {
	r, intTD, list := testRegistry(t)
	s := NewStore(r)

	a, err := s.Add([]*typedef.TypesDef{list, intTD})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Add([]*typedef.TypesDef{list, intTD})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected Store.Add to return the same canonical instance for an equal tuple")
	}
	if s.Len() != 1 {
		t.Errorf("expected exactly one interned EPT, got %d", s.Len())
	}
	hits, misses := s.Info()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got hits=%d misses=%d", hits, misses)
	}
}

func TestStoreAddNamesResolvesThroughRegistry(t *testing.T) {
	r, _, _ := testRegistry(t)
	s := NewStore(r)
	e, err := s.AddNames([]string{"list", "int"})
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "list[int]" {
		t.Errorf("expected list[int], got %s", e.String())
	}
}

func TestStoreScavengeRemovesReleasedStaleEntries(t *testing.T) {
	r, intTD, list := testRegistry(t)
	s := NewStore(r)
	e, err := s.Add([]*typedef.TypesDef{list, intTD})
	if err != nil {
		t.Fatal(err)
	}
	s.Release(e.DedupKey())
	for i := 0; i < 5; i++ {
		s.Scavenge(1)
	}
	if s.Len() != 0 {
		t.Errorf("expected the released entry to be scavenged after aging out, got Len=%d", s.Len())
	}
}
