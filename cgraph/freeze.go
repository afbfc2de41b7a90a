package cgraph

import (
	"encoding/json"
	"hash/fnv"

	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/iface"
)

// Freeze makes every row's interface immutable and latches the graph as
// frozen. It does not intern the connection list (see ConnectionStore)
// and does not compute a hash; Hash derives one on demand. Stabilize and
// ConnectAll call this once they have finished connecting; callers should
// not normally call it directly on an unstable graph.
func (g *CGraph) Freeze() error {
	if g.IsFrozen() {
		return nil
	}
	for _, row := range allRows {
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		if err := itf.Freeze(); err != nil {
			return err
		}
	}
	g.FreezeState.Freeze()
	return nil
}

// Verify performs the fast structural checks spec §3.6 requires: that the
// present rows are a combination permitted for the graph type and that
// every row's interface itself verifies.
func (g *CGraph) Verify() error {
	if err := validateRowCombination(g.graphType, g.presentRows()); err != nil {
		return err
	}
	for _, row := range allRows {
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		if err := itf.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// Consistency runs Verify and then checks that every destination
// endpoint in Ad/Bd/Od/Pd has exactly one reference (spec §3.4
// invariants 1 and 5). It does not check that a reference's source EPT
// conforms to its destination EPT, since that needs a type registry;
// Stabilize and ConnectAll perform that check when they connect.
func (g *CGraph) Consistency() error {
	if err := g.Verify(); err != nil {
		return err
	}
	for _, row := range []Row{RowAd, RowBd, RowOd, RowPd} {
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		for i := 0; i < itf.Len(); i++ {
			if len(itf.At(i).Refs) != 1 {
				return egperr.Newf(egperr.InvariantViolation, "%s[%d] has %d references, expected exactly 1", row, i, len(itf.At(i).Refs))
			}
		}
	}
	return nil
}

// row3 is one [src_row, src_idx, ept_string] triple in the canonical JSON
// format (spec §6.2).
type row3 = [3]interface{}

// ToJSON renders the canonical wire format for a frozen CGraph (spec
// §6.2): `{"<DstRow>": [[src_row, src_idx, ept_string], …], …}`, with
// every permitted destination row present (possibly empty).
func (g *CGraph) ToJSON() ([]byte, error) {
	out := make(map[string][]row3)
	for row := range permittedRows(g.graphType) {
		if row.Class() != iface.Dst {
			continue
		}
		out[string(row)] = []row3{}
	}
	for _, row := range allRows {
		if row.Class() != iface.Dst {
			continue
		}
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		triples := make([]row3, 0, itf.Len())
		for i := 0; i < itf.Len(); i++ {
			ep := itf.At(i)
			if len(ep.Refs) == 0 {
				continue
			}
			ref := ep.Refs[0]
			triples = append(triples, row3{ref.Row, ref.Idx, ep.Typ.String()})
		}
		out[string(row)] = triples
	}
	return json.Marshal(out)
}

// Hash returns a deterministic 64-bit identity hash of the graph's
// canonical JSON form, used as the in-process content-address for
// interning and equality checks distinct from the cryptographic GC
// signature (spec §3.5), which folds in far more than the cgraph alone.
func (g *CGraph) Hash() (uint64, error) {
	data, err := g.ToJSON()
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
