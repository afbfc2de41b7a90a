package ept

import "github.com/erasmus-gp/egpcore/typedef"

// ConformsTo reports whether src may feed a destination endpoint typed
// dst: src.EPT ∈ ancestors(dst.EPT) ∪ {dst.EPT} (spec §4.4 step 6, §8
// property 4). An exact match (identical canonical string) always
// conforms. For single-element EPTs, conformance otherwise follows the
// Type Registry's ancestor relation on the head type. Compound (nested
// template) EPTs that are not an exact match are treated as
// non-conforming: the registry's ancestor/descendant closures are defined
// over TypesDefs, and the spec does not define a covariance rule for
// template arguments, so only the identity case is guaranteed sound for
// compound types.
func ConformsTo(reg *typedef.Registry, src, dst *EPT) (bool, error) {
	if src.Equal(dst) {
		return true, nil
	}
	if len(src.elems) != 1 || len(dst.elems) != 1 {
		return false, nil
	}
	return reg.IsAncestorOrSelf(src.Head(), dst.Head())
}

// AncestorDistance returns how many ancestor hops separate src from dst
// when src conforms to dst (spec §4.4 step 3's "shallowest ancestor"
// tie-break). Exact matches are distance 0. Only meaningful for
// single-element EPTs; compound EPTs that are not an exact match return
// false per ConformsTo's own restriction.
func AncestorDistance(reg *typedef.Registry, src, dst *EPT) (int, bool, error) {
	if src.Equal(dst) {
		return 0, true, nil
	}
	if len(src.elems) != 1 || len(dst.elems) != 1 {
		return 0, false, nil
	}
	return reg.AncestorDistance(dst.Head(), src.Head())
}
