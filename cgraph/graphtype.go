package cgraph

import "github.com/erasmus-gp/egpcore/egperr"

// GraphType classifies the shape of a CGraph and constrains which rows
// may be present and how they connect (spec §3.4).
type GraphType uint8

const (
	// Primitive is a codon: no sub-graphs, just Is -> Od.
	Primitive GraphType = iota
	// Standard has sub-graphs A and/or B in sequence.
	Standard
	// IfThen uses row F to gate sub-graph A.
	IfThen
	// IfThenElse uses row F to choose between sub-graphs A and B (via P).
	IfThenElse
	// ForLoop iterates sub-graph A with loop feedback via L.
	ForLoop
	// WhileLoop iterates sub-graph A while a condition on W holds.
	WhileLoop
	// Empty has no sub-graphs and no guaranteed connections (a stub).
	Empty
)

func (t GraphType) String() string {
	switch t {
	case Primitive:
		return "PRIMITIVE"
	case Standard:
		return "STANDARD"
	case IfThen:
		return "IF_THEN"
	case IfThenElse:
		return "IF_THEN_ELSE"
	case ForLoop:
		return "FOR_LOOP"
	case WhileLoop:
		return "WHILE_LOOP"
	case Empty:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

// permittedRows lists which rows are legal to be present for a graph type,
// beyond the always-required Is/Od (spec §4.4 step 1, e.g. "STANDARD
// permits {Is,Od,Ad,As,Bd,Bs}; IF_THEN_ELSE additionally permits
// {Fd,Pd,Ps}").
func permittedRows(t GraphType) map[Row]bool {
	base := map[Row]bool{RowIs: true, RowOd: true}
	switch t {
	case Primitive, Empty:
		// no further rows
	case Standard:
		base[RowAd] = true
		base[RowAs] = true
		base[RowBd] = true
		base[RowBs] = true
	case IfThen:
		base[RowFd] = true
		base[RowAd] = true
		base[RowAs] = true
	case IfThenElse:
		base[RowFd] = true
		base[RowAd] = true
		base[RowAs] = true
		base[RowBd] = true
		base[RowBs] = true
		base[RowPd] = true
		base[RowPs] = true
	case ForLoop:
		base[RowAd] = true
		base[RowAs] = true
		base[RowLs] = true
		base[RowLd] = true
	case WhileLoop:
		base[RowAd] = true
		base[RowAs] = true
		base[RowLs] = true
		base[RowLd] = true
		base[RowWd] = true
	}
	// Ud (the unconnected-source bit bucket) is permitted for any graph
	// type; stabilisation adds it lazily as needed (spec §4.4 step 5).
	base[RowUd] = true
	return base
}

// validSources returns, for a destination row, which source rows may
// legally feed it under graph type t (spec §3.4's row-to-row connectivity
// table and §4.4 step 1's permitted combinations).
func validSources(t GraphType, dst Row) []Row {
	switch t {
	case Primitive, Empty:
		if dst == RowOd {
			return []Row{RowIs}
		}
	case Standard:
		switch dst {
		case RowAd:
			return []Row{RowIs}
		case RowBd:
			return []Row{RowIs, RowAs}
		case RowOd:
			return []Row{RowIs, RowAs, RowBs}
		}
	case IfThen:
		switch dst {
		case RowFd:
			return []Row{RowIs}
		case RowAd:
			return []Row{RowIs}
		case RowOd:
			return []Row{RowIs, RowAs}
		}
	case IfThenElse:
		switch dst {
		case RowFd:
			return []Row{RowIs}
		case RowAd:
			return []Row{RowIs}
		case RowBd:
			return []Row{RowIs}
		case RowOd:
			return []Row{RowIs, RowAs}
		case RowPd:
			return []Row{RowIs, RowBs}
		}
	case ForLoop, WhileLoop:
		switch dst {
		case RowAd:
			return []Row{RowIs, RowLs}
		case RowLd:
			return []Row{RowAs}
		case RowWd:
			return []Row{RowIs, RowAs}
		case RowOd:
			return []Row{RowIs, RowAs}
		}
	}
	return nil
}

// validateRowCombination checks that the set of present rows in g matches
// a combination permitted for its graph type (spec §4.4 step 1).
func validateRowCombination(t GraphType, present map[Row]bool) error {
	allowed := permittedRows(t)
	for r := range present {
		if !allowed[r] {
			return egperr.Newf(egperr.StructuralError, "row %s is not permitted for graph type %s", r, t)
		}
	}
	if !present[RowIs] || !present[RowOd] {
		return egperr.New(egperr.StructuralError, "Is and Od must both be present")
	}
	return nil
}
