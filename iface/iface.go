// Package iface implements the Interface Store (spec component C): an
// ordered sequence of endpoint types belonging to one row of a Connection
// Graph, interned and immutable once frozen.
package iface

import (
	"sort"

	"github.com/erasmus-gp/egpcore/cacheable"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/typedef"
)

// Class distinguishes a source endpoint (feeds connections) from a
// destination endpoint (receives them).
type Class uint8

const (
	// Src marks a source endpoint.
	Src Class = iota
	// Dst marks a destination endpoint.
	Dst
)

func (c Class) String() string {
	if c == Src {
		return "Src"
	}
	return "Dst"
}

// Ref is a reference from one endpoint to another, (row, idx) addressed.
type Ref struct {
	Row string
	Idx int
}

// Endpoint is one member of an Interface: its position, class, type, and
// the connections it participates in (spec §3.3).
type Endpoint struct {
	Row   string
	Idx   int
	Class Class
	Typ   *ept.EPT
	Refs  []Ref
}

// Interface is an ordered sequence (0-255) of endpoint types belonging to
// a single row of a Connection Graph (spec §3.3). Interfaces are interned
// by Store and become immutable once Freeze is called.
type Interface struct {
	cacheable.Base
	cacheable.FreezeState

	row       string
	class     Class
	endpoints []Endpoint
	hash      uint64
}

const maxLen = 256

// New builds an unfrozen Interface over eps, which must already carry
// row/idx/class consistent with row/class and sequential indices
// 0..len(eps)-1 (spec §3.3: "endpoint[i].idx == i").
func New(row string, class Class, eps []Endpoint) (*Interface, error) {
	if len(eps) > maxLen {
		return nil, egperr.Newf(egperr.StructuralError, "interface length %d exceeds maximum %d", len(eps), maxLen)
	}
	cp := make([]Endpoint, len(eps))
	for i, ep := range eps {
		if ep.Idx != i {
			return nil, egperr.Newf(egperr.StructuralError, "endpoint index mismatch: %d != %d", ep.Idx, i)
		}
		if ep.Row != row {
			return nil, egperr.Newf(egperr.StructuralError, "endpoint row %q does not match interface row %q", ep.Row, row)
		}
		if ep.Class != class {
			return nil, egperr.Newf(egperr.StructuralError, "endpoint class %s does not match interface class %s", ep.Class, class)
		}
		cp[i] = ep
		cp[i].Refs = append([]Ref(nil), ep.Refs...)
	}
	return &Interface{row: row, class: class, endpoints: cp}, nil
}

// FromEPTs builds an unfrozen Interface of the given row and class directly
// from a list of already-interned EPTs, leaving every endpoint unconnected (spec
// §4.3: "a list of EPTs (already interned)").
func FromEPTs(row string, class Class, epts []*ept.EPT) (*Interface, error) {
	eps := make([]Endpoint, len(epts))
	for i, e := range epts {
		eps[i] = Endpoint{Row: row, Idx: i, Class: class, Typ: e}
	}
	return New(row, class, eps)
}

// FromNames builds an unfrozen Interface by resolving a flat list of type
// names through store (spec §4.3: "a list of type names / UIDs").
func FromNames(store *ept.Store, row string, class Class, names []string) (*Interface, error) {
	epts := make([]*ept.EPT, len(names))
	for i, n := range names {
		e, err := store.AddNames([]string{n})
		if err != nil {
			return nil, err
		}
		epts[i] = e
	}
	return FromEPTs(row, class, epts)
}

// Row returns the row this interface belongs to.
func (f *Interface) Row() string { return f.row }

// Class returns the endpoint class shared by every endpoint.
func (f *Interface) Class() Class { return f.class }

// Len returns the number of endpoints.
func (f *Interface) Len() int { return len(f.endpoints) }

// At returns the endpoint at idx.
func (f *Interface) At(idx int) Endpoint { return f.endpoints[idx] }

// Endpoints returns a copy of the endpoint vector, in order.
func (f *Interface) Endpoints() []Endpoint {
	return append([]Endpoint(nil), f.endpoints...)
}

// Set replaces the endpoint at idx, rejecting the call once frozen.
func (f *Interface) Set(idx int, ep Endpoint) error {
	if f.IsFrozen() {
		return egperr.New(egperr.InvariantViolation, "cannot modify a frozen interface")
	}
	if idx < 0 || idx >= len(f.endpoints) {
		return egperr.Newf(egperr.StructuralError, "endpoint index %d out of range [0,%d)", idx, len(f.endpoints))
	}
	f.endpoints[idx] = ep
	f.MarkDirty()
	return nil
}

// Freeze makes the interface immutable and computes its persistent hash
// (spec §3.3: "a content hash stable after freezing").
func (f *Interface) Freeze() error {
	if f.IsFrozen() {
		return nil
	}
	if len(f.endpoints) == 0 {
		return egperr.New(egperr.StructuralError, "interface must have at least one endpoint")
	}
	for _, ep := range f.endpoints {
		if ep.Row != f.row {
			return egperr.New(egperr.InvariantViolation, "all endpoints must share the interface row")
		}
		if ep.Class != f.class {
			return egperr.New(egperr.InvariantViolation, "all endpoints must share the interface class")
		}
	}
	f.hash = f.computeHash()
	f.FreezeState.Freeze()
	return nil
}

// Hash returns the interface's persistent content hash; valid only once
// frozen (it is recomputed dynamically before that point).
func (f *Interface) Hash() uint64 {
	if f.IsFrozen() {
		return f.hash
	}
	return f.computeHash()
}

func (f *Interface) computeHash() uint64 {
	// FNV-1a over the row, class, ordered UIDs and ref lists; any deterministic,
	// collision-resistant-enough fold suffices for in-process content
	// addressing at this layer (the 32-byte genome signature is the
	// cryptographic content address; this is an internal identity hash).
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	fold := func(v uint64) {
		h ^= v
		h *= prime64
	}
	foldStr := func(s string) {
		fold(uint64(len(s)))
		for i := 0; i < len(s); i++ {
			fold(uint64(s[i]))
		}
	}
	foldStr(f.row)
	fold(uint64(f.class))
	for _, ep := range f.endpoints {
		if ep.Typ != nil {
			fold(uint64(ep.Typ.UID()))
		}
		fold(uint64(len(ep.Refs)))
		for _, r := range ep.Refs {
			foldStr(r.Row)
			fold(uint64(r.Idx))
		}
	}
	return h
}

// ToTDUIDs returns the flat, order-preserving list of endpoint type UIDs
// (spec §4.3: "to_td_uids() — flat list of UIDs, order preserved").
func (f *Interface) ToTDUIDs() []typedef.UID {
	out := make([]typedef.UID, len(f.endpoints))
	for i, ep := range f.endpoints {
		out[i] = ep.Typ.UID()
	}
	return out
}

// SortedUniqueTDUIDs returns the deterministic ordered set of distinct
// endpoint type UIDs (spec §4.3: used for interface-shape hashing).
func (f *Interface) SortedUniqueTDUIDs() []typedef.UID {
	seen := make(map[typedef.UID]bool, len(f.endpoints))
	out := make([]typedef.UID, 0, len(f.endpoints))
	for _, ep := range f.endpoints {
		u := ep.Typ.UID()
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TypesAndIndices returns the sorted unique UIDs and, for each endpoint in
// order, the byte index of its type within that sorted tuple, the compact
// (int[], bytea) encoding spec §4.3 describes for the library schema.
func (f *Interface) TypesAndIndices() ([]typedef.UID, []byte) {
	sortedUnique := f.SortedUniqueTDUIDs()
	pos := make(map[typedef.UID]byte, len(sortedUnique))
	for i, u := range sortedUnique {
		pos[u] = byte(i)
	}
	indices := make([]byte, len(f.endpoints))
	for i, ep := range f.endpoints {
		indices[i] = pos[ep.Typ.UID()]
	}
	return sortedUnique, indices
}

// UnconnectedEPs returns the indices of endpoints with an empty Refs list
// (spec §4.3: "unconnected_eps()").
func (f *Interface) UnconnectedEPs() []int {
	var out []int
	for i, ep := range f.endpoints {
		if len(ep.Refs) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// Add concatenates a's endpoints followed by b's, renumbering indices,
// producing a new unfrozen Interface. Permitted only between same-row,
// same-class interfaces (spec §4.3: "Addition a + b ... permitted only
// between same-row, same-class interfaces").
func Add(a, b *Interface) (*Interface, error) {
	if a.row != b.row {
		return nil, egperr.New(egperr.StructuralError, "cannot add interfaces belonging to different rows")
	}
	if a.class != b.class {
		return nil, egperr.New(egperr.StructuralError, "cannot add interfaces of different classes")
	}
	eps := make([]Endpoint, 0, len(a.endpoints)+len(b.endpoints))
	for _, ep := range a.endpoints {
		eps = append(eps, ep)
	}
	offset := len(a.endpoints)
	for _, ep := range b.endpoints {
		shifted := ep
		shifted.Idx += offset
		refs := make([]Ref, len(ep.Refs))
		copy(refs, ep.Refs)
		shifted.Refs = refs
		eps = append(eps, shifted)
	}
	for i := range eps {
		eps[i].Idx = i
	}
	return New(a.row, a.class, eps)
}

// Verify performs the fast structural checks spec §3.6 requires.
func (f *Interface) Verify() error {
	for i, ep := range f.endpoints {
		if ep.Idx != i {
			return egperr.Newf(egperr.StructuralError, "endpoint index mismatch at position %d: idx=%d", i, ep.Idx)
		}
		if ep.Row != f.row {
			return egperr.New(egperr.InvariantViolation, "endpoint row mismatch").WithSubject(f.row)
		}
		if ep.Class != f.class {
			return egperr.New(egperr.InvariantViolation, "endpoint class mismatch").WithSubject(f.row)
		}
	}
	if len(f.endpoints) > maxLen {
		return egperr.Newf(egperr.StructuralError, "interface length %d exceeds maximum %d", len(f.endpoints), maxLen)
	}
	return nil
}

// Consistency runs the same shape checks as Verify. References are not
// checked here, since their targets belong to other rows; the CGraph,
// which knows about all rows, is responsible for the cross-interface
// conformance check (spec §4.4 step 6).
func (f *Interface) Consistency() error {
	return f.Verify()
}
