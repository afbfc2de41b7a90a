package iface

import (
	"testing"

	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/typedef"
)

func testEPT(t *testing.T, name string, xuid uint16) *ept.EPT {
	t.Helper()
	u, err := typedef.Pack(typedef.Fields{XUID: xuid})
	if err != nil {
		t.Fatal(err)
	}
	td, err := typedef.New(name, u, nil, nil, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	e, err := ept.New([]*typedef.TypesDef{td})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewRejectsIndexMismatch(t *testing.T) {
	intEPT := testEPT(t, "int", 1)
	eps := []Endpoint{
		{Row: "Is", Idx: 1, Class: Src, Typ: intEPT},
	}
	if _, err := New("Is", Src, eps); err == nil {
		t.Fatal("expected index-mismatch error")
	}
}

func TestNewRejectsRowOrClassMismatch(t *testing.T) {
	intEPT := testEPT(t, "int", 1)
	if _, err := New("Is", Src, []Endpoint{{Row: "Od", Idx: 0, Class: Src, Typ: intEPT}}); err == nil {
		t.Fatal("expected row-mismatch error")
	}
	if _, err := New("Is", Src, []Endpoint{{Row: "Is", Idx: 0, Class: Dst, Typ: intEPT}}); err == nil {
		t.Fatal("expected class-mismatch error")
	}
}

func TestFreezeComputesStableHash(t *testing.T) {
	intEPT := testEPT(t, "int", 1)
	f, err := New("Is", Src, []Endpoint{{Row: "Is", Idx: 0, Class: Src, Typ: intEPT}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Freeze(); err != nil {
		t.Fatal(err)
	}
	if !f.IsFrozen() {
		t.Fatal("expected interface to report frozen")
	}
	h1 := f.Hash()
	h2 := f.Hash()
	if h1 != h2 {
		t.Error("expected a frozen interface's hash to be stable across calls")
	}
}

func TestSetFailsAfterFreeze(t *testing.T) {
	intEPT := testEPT(t, "int", 1)
	f, err := New("Is", Src, []Endpoint{{Row: "Is", Idx: 0, Class: Src, Typ: intEPT}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Freeze(); err != nil {
		t.Fatal(err)
	}
	if err := f.Set(0, Endpoint{Row: "Is", Idx: 0, Class: Src, Typ: intEPT}); err == nil {
		t.Fatal("expected Set to fail on a frozen interface")
	}
}

func TestToTDUIDsPreservesOrder(t *testing.T) {
	a := testEPT(t, "int", 1)
	b := testEPT(t, "str", 2)
	f, err := FromEPTs("Is", Src, []*ept.EPT{a, b, a})
	if err != nil {
		t.Fatal(err)
	}
	uids := f.ToTDUIDs()
	if len(uids) != 3 || uids[0] != a.UID() || uids[1] != b.UID() || uids[2] != a.UID() {
		t.Errorf("unexpected UID order: %v", uids)
	}
}

func TestSortedUniqueTDUIDsDeduplicatesAndSorts(t *testing.T) {
	a := testEPT(t, "int", 5)
	b := testEPT(t, "str", 1)
	f, err := FromEPTs("Is", Src, []*ept.EPT{a, b, a})
	if err != nil {
		t.Fatal(err)
	}
	unique := f.SortedUniqueTDUIDs()
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique UIDs, got %d", len(unique))
	}
	if unique[0] > unique[1] {
		t.Error("expected ascending order")
	}
}

func TestTypesAndIndicesRoundTrip(t *testing.T) {
	a := testEPT(t, "int", 1)
	b := testEPT(t, "str", 2)
	f, err := FromEPTs("Is", Src, []*ept.EPT{b, a, b})
	if err != nil {
		t.Fatal(err)
	}
	sortedUnique, indices := f.TypesAndIndices()
	if len(indices) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(indices))
	}
	for i, ep := range f.Endpoints() {
		if sortedUnique[indices[i]] != ep.Typ.UID() {
			t.Errorf("index %d does not map back to the correct UID", i)
		}
	}
}

func TestUnconnectedEPs(t *testing.T) {
	a := testEPT(t, "int", 1)
	eps := []Endpoint{
		{Row: "Od", Idx: 0, Class: Dst, Typ: a, Refs: []Ref{{Row: "Is", Idx: 0}}},
		{Row: "Od", Idx: 1, Class: Dst, Typ: a},
	}
	f, err := New("Od", Dst, eps)
	if err != nil {
		t.Fatal(err)
	}
	unconnected := f.UnconnectedEPs()
	if len(unconnected) != 1 || unconnected[0] != 1 {
		t.Errorf("expected only index 1 unconnected, got %v", unconnected)
	}
}

func TestAddConcatenatesAndRenumbers(t *testing.T) {
	a := testEPT(t, "int", 1)
	b := testEPT(t, "str", 2)
	left, err := FromEPTs("Is", Src, []*ept.EPT{a})
	if err != nil {
		t.Fatal(err)
	}
	right, err := FromEPTs("Is", Src, []*ept.EPT{b, a})
	if err != nil {
		t.Fatal(err)
	}
	sum, err := Add(left, right)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Len() != 3 {
		t.Fatalf("expected length 3, got %d", sum.Len())
	}
	for i, ep := range sum.Endpoints() {
		if ep.Idx != i {
			t.Errorf("endpoint %d has idx %d", i, ep.Idx)
		}
	}
}

func TestAddRejectsDifferentRowOrClass(t *testing.T) {
	a := testEPT(t, "int", 1)
	left, _ := FromEPTs("Is", Src, []*ept.EPT{a})
	rightRow, _ := FromEPTs("Od", Dst, []*ept.EPT{a})
	if _, err := Add(left, rightRow); err == nil {
		t.Fatal("expected error when adding interfaces of different rows/classes")
	}
}

func TestStoreInterningIdempotentForEqualInterfaces(t *testing.T) {
	a := testEPT(t, "int", 1)
	s := NewStore()

	f1, err := FromEPTs("Is", Src, []*ept.EPT{a})
	if err != nil {
		t.Fatal(err)
	}
	f2, err := FromEPTs("Is", Src, []*ept.EPT{a})
	if err != nil {
		t.Fatal(err)
	}
	canon1, err := s.Add(f1)
	if err != nil {
		t.Fatal(err)
	}
	canon2, err := s.Add(f2)
	if err != nil {
		t.Fatal(err)
	}
	if canon1 != canon2 {
		t.Error("expected Store.Add to return the same canonical instance for equal interfaces")
	}
}
