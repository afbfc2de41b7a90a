// Package ept implements the Endpoint-Type Store (spec component B): an
// interning set of immutable tuples of type definitions, each describing
// one endpoint's possibly-compound type (e.g. `list[int]`).
package ept

import (
	"strings"

	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/typedef"
)

// EPT is an immutable, interned tuple (t0, t1, …, tn) of TypesDefs where
// t0's template arity matches the tail length, recursively (spec §3.2).
// Two EPTs built from the same element UIDs in the same order are
// identical once interned by a Store; compare with Equal or by UID.
type EPT struct {
	elems []*typedef.TypesDef
	uid   typedef.UID
	str   string
}

// New constructs an EPT from an ordered list of already-resolved type
// definitions. elems[0] is the head type; elems[1:] are its template
// arguments, recursively validated against each argument's own arity.
func New(elems []*typedef.TypesDef) (*EPT, error) {
	if len(elems) == 0 {
		return nil, egperr.New(egperr.StructuralError, "an endpoint type must have at least one element")
	}
	if err := validateArity(elems); err != nil {
		return nil, err
	}
	cp := append([]*typedef.TypesDef(nil), elems...)
	return &EPT{
		elems: cp,
		uid:   cp[0].UID(),
		str:   canonicalString(cp),
	}, nil
}

// validateArity checks that elems[0]'s TT equals len(elems)-1. It does
// not recurse into the tail: the arity of an element in elems[1:] is not
// checked. In this flat tuple representation deeper nesting is carried
// by the element's own name already denoting a synthesized compound
// TypesDef (e.g. "list[int]"), so only the outermost shape is validated
// against TT.
func validateArity(elems []*typedef.TypesDef) error {
	head := elems[0]
	tail := elems[1:]
	if int(head.TT()) != len(tail) {
		return egperr.Newf(egperr.StructuralError,
			"endpoint type head %q has arity %d but %d arguments were supplied", head.Name(), head.TT(), len(tail))
	}
	return nil
}

// Elements returns the tuple's type definitions in order.
func (e *EPT) Elements() []*typedef.TypesDef {
	return append([]*typedef.TypesDef(nil), e.elems...)
}

// Head returns the tuple's first (outermost) type definition.
func (e *EPT) Head() *typedef.TypesDef { return e.elems[0] }

// UID returns the endpoint type's derived UID, which is the UID of its
// head element (a synthesized template type already carries a UID folded
// from its own arguments; see typedef.Registry.Expand).
func (e *EPT) UID() typedef.UID { return e.uid }

// String returns the canonical textual form, e.g. "dict[str, list[int]]".
func (e *EPT) String() string { return e.str }

// DedupKey implements dedup.Keyed, keying by the canonical string form so
// that EPTs built from structurally equal but distinct TypesDef slices
// (e.g. re-resolved across a cache eviction) still collide in a WeakSet.
func (e *EPT) DedupKey() string { return e.str }

// Equal reports whether e and o denote the same endpoint type.
func (e *EPT) Equal(o *EPT) bool {
	if o == nil {
		return false
	}
	return e.str == o.str
}

func canonicalString(elems []*typedef.TypesDef) string {
	if len(elems) == 1 {
		return elems[0].Name()
	}
	var b strings.Builder
	b.WriteString(elems[0].Name())
	b.WriteByte('[')
	for i, e := range elems[1:] {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Name())
	}
	b.WriteByte(']')
	return b.String()
}

// FromNames resolves a flat list of type names against reg and builds the
// EPT, the path used when the caller has type names or UIDs rather than
// already-resolved TypesDefs (spec §3.3: "a list of type names / UIDs;
// the store calls the EPT store to canonicalise").
func FromNames(reg *typedef.Registry, names []string) (*EPT, error) {
	elems := make([]*typedef.TypesDef, 0, len(names))
	for _, n := range names {
		td, err := reg.GetByName(n)
		if err != nil {
			return nil, err
		}
		elems = append(elems, td)
	}
	return New(elems)
}

// FromUIDs resolves a flat list of UIDs against reg and builds the EPT.
func FromUIDs(reg *typedef.Registry, uids []typedef.UID) (*EPT, error) {
	elems := make([]*typedef.TypesDef, 0, len(uids))
	for _, u := range uids {
		td, err := reg.GetByUID(u)
		if err != nil {
			return nil, err
		}
		elems = append(elems, td)
	}
	return New(elems)
}

// FromTemplate resolves a template type string such as "list[int]" via
// reg.Expand and wraps the (possibly already-compound) result as a
// single-element EPT whose head carries its own derived arity.
func FromTemplate(reg *typedef.Registry, template string) (*EPT, error) {
	td, err := reg.Expand(template)
	if err != nil {
		return nil, err
	}
	return New([]*typedef.TypesDef{td})
}
