package cgraph

import (
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/typedef"
)

// rowOrder gives each row a stable priority for the "lowest source row (by
// enum value)" tie-break (spec §4.4 step 3).
func rowOrder(r Row) int {
	for i, x := range allRows {
		if x == r {
			return i
		}
	}
	return len(allRows)
}

type candidate struct {
	row      Row
	idx      int
	exact    bool
	distance int
}

func betterCandidate(a, b candidate) bool {
	if a.exact != b.exact {
		return a.exact
	}
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	if a.idx != b.idx {
		return a.idx < b.idx
	}
	return rowOrder(a.row) < rowOrder(b.row)
}

// findSource searches the permitted source rows for dstRow, returning the
// best-ranked unconnected-or-not endpoint whose EPT conforms to want
// (spec §4.4 step 3's tie-break order: exact match, then shallowest
// ancestor, then lowest source index, then lowest source row).
func (g *CGraph) findSource(reg *typedef.Registry, dstRow Row, want *ept.EPT) (candidate, bool, error) {
	var best candidate
	found := false
	for _, srcRow := range validSources(g.graphType, dstRow) {
		itf := g.rows[srcRow]
		if itf == nil {
			continue
		}
		for i := 0; i < itf.Len(); i++ {
			ep := itf.At(i)
			ok, err := ept.ConformsTo(reg, ep.Typ, want)
			if err != nil {
				return candidate{}, false, err
			}
			if !ok {
				continue
			}
			exact := ep.Typ.Equal(want)
			dist := 0
			if !exact {
				dist, _, err = ept.AncestorDistance(reg, ep.Typ, want)
				if err != nil {
					return candidate{}, false, err
				}
			}
			c := candidate{row: srcRow, idx: i, exact: exact, distance: dist}
			if !found || betterCandidate(c, best) {
				best = c
				found = true
			}
		}
	}
	return best, found, nil
}

func isFixedSourceRow(row Row) bool { return row == RowIs }

// appendSource appends a new source endpoint of type want to one of the
// permitted, non-fixed source rows for dstRow. When more than one such row
// is eligible, the graph's seeded RNG picks among them (spec §4.4:
// "different seeds produce different but equally valid stabilisations"),
// so the choice is reproducible for a given created timestamp.
func (g *CGraph) appendSource(dstRow Row, want *ept.EPT) (Row, int, error) {
	var eligible []Row
	for _, srcRow := range validSources(g.graphType, dstRow) {
		if !isFixedSourceRow(srcRow) {
			eligible = append(eligible, srcRow)
		}
	}
	if len(eligible) == 0 {
		return "", 0, egperr.New(egperr.UnsatisfiableInterface, "no permitted, non-fixed source row available to append to").WithSubject(string(dstRow))
	}
	srcRow := eligible[g.rng().Intn(len(eligible))]

	itf := g.rows[srcRow]
	var eps []iface.Endpoint
	if itf != nil {
		eps = itf.Endpoints()
	}
	newEP := iface.Endpoint{Row: string(srcRow), Idx: len(eps), Class: iface.Src, Typ: want}
	eps = append(eps, newEP)
	next, err := iface.New(string(srcRow), iface.Src, eps)
	if err != nil {
		return "", 0, err
	}
	g.rows[srcRow] = next
	return srcRow, len(eps) - 1, nil
}

// connectDestRow runs step 3/4 of Stabilize against one destination row:
// for each unconnected destination endpoint, find or create a conforming
// source, and record the connection by appending a Ref to the destination
// endpoint.
func (g *CGraph) connectDestRow(reg *typedef.Registry, row Row) error {
	itf := g.rows[row]
	if itf == nil {
		return nil
	}
	for idx := 0; idx < itf.Len(); idx++ {
		ep := itf.At(idx)
		if len(ep.Refs) > 0 {
			continue
		}
		c, found, err := g.findSource(reg, row, ep.Typ)
		if err != nil {
			return err
		}
		var srcRow Row
		var srcIdx int
		if found {
			srcRow, srcIdx = c.row, c.idx
		} else {
			if isFixedSourceRow(row) {
				return egperr.Newf(egperr.UnsatisfiableInterface, "no conforming source for fixed destination %s[%d]", row, idx)
			}
			srcRow, srcIdx, err = g.appendSource(row, ep.Typ)
			if err != nil {
				return err
			}
		}
		ep.Refs = append(ep.Refs, iface.Ref{Row: string(srcRow), Idx: srcIdx})
		if err := itf.Set(idx, ep); err != nil {
			return err
		}
		itf = g.rows[row]
	}
	return nil
}

// mirrorDanglingSources implements step 5: every source endpoint with no
// destination referencing it is mirrored into Ud.
func (g *CGraph) mirrorDanglingSources() error {
	referenced := make(map[Row]map[int]bool)
	for row, itf := range g.rows {
		if itf == nil || row.Class() != iface.Dst {
			continue
		}
		for i := 0; i < itf.Len(); i++ {
			for _, ref := range itf.At(i).Refs {
				r := Row(ref.Row)
				if referenced[r] == nil {
					referenced[r] = make(map[int]bool)
				}
				referenced[r][ref.Idx] = true
			}
		}
	}

	var danglers []iface.Endpoint
	for _, row := range allRows {
		if row.Class() != iface.Src {
			continue
		}
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		for i := 0; i < itf.Len(); i++ {
			if !referenced[row][i] {
				danglers = append(danglers, iface.Endpoint{Row: string(row), Idx: i, Class: iface.Src, Typ: itf.At(i).Typ})
			}
		}
	}
	if len(danglers) == 0 {
		return nil
	}

	existing := g.rows[RowUd]
	var eps []iface.Endpoint
	if existing != nil {
		eps = existing.Endpoints()
	}
	for _, d := range danglers {
		idx := len(eps)
		eps = append(eps, iface.Endpoint{
			Row:   string(RowUd),
			Idx:   idx,
			Class: iface.Dst,
			Typ:   d.Typ,
			Refs:  []iface.Ref{{Row: d.Row, Idx: d.Idx}},
		})
	}
	next, err := iface.New(string(RowUd), iface.Dst, eps)
	if err != nil {
		return err
	}
	g.rows[RowUd] = next
	return nil
}

// buildConnections flattens every destination row's Refs into the graph's
// Connection list (spec §3.4: "A connection is a directed edge from a
// source endpoint to a destination endpoint").
func (g *CGraph) buildConnections() []Connection {
	var conns []Connection
	for _, row := range allRows {
		if row.Class() != iface.Dst {
			continue
		}
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		for i := 0; i < itf.Len(); i++ {
			for _, ref := range itf.At(i).Refs {
				conns = append(conns, Connection{
					SrcRow: Row(ref.Row),
					SrcIdx: ref.Idx,
					DstRow: row,
					DstIdx: i,
				})
			}
		}
	}
	return conns
}

// checkConformance implements step 6: every connection's source EPT must
// be an ancestor of, or identical to, its destination EPT.
func (g *CGraph) checkConformance(reg *typedef.Registry) error {
	for _, c := range g.conns {
		srcItf, dstItf := g.rows[c.SrcRow], g.rows[c.DstRow]
		if srcItf == nil || dstItf == nil {
			return egperr.New(egperr.InvariantViolation, "connection references a row with no interface")
		}
		srcEP, dstEP := srcItf.At(c.SrcIdx), dstItf.At(c.DstIdx)
		ok, err := ept.ConformsTo(reg, srcEP.Typ, dstEP.Typ)
		if err != nil {
			return err
		}
		if !ok {
			return egperr.Newf(egperr.StructuralError, "connection %s[%d]->%s[%d] violates type conformance", c.SrcRow, c.SrcIdx, c.DstRow, c.DstIdx)
		}
	}
	return nil
}

// Stabilize turns an embryonic graph into a stable one (spec §4.4):
// validates the present row combination, sweeps invalid references,
// connects Od/Ad/Bd/Pd in that order (creating source endpoints where
// permitted), mirrors dangling sources into Ud, checks type conformance,
// and freezes the graph.
//
// Preconditions: GraphType is set and Is/Od are both present (enforced by
// validateRowCombination). Postconditions: IsStable, Verify and
// Consistency all succeed.
func (g *CGraph) Stabilize(reg *typedef.Registry) error {
	if g.IsFrozen() {
		return egperr.New(egperr.InvariantViolation, "cannot stabilize an already-frozen graph")
	}
	present := g.presentRows()
	if err := validateRowCombination(g.graphType, present); err != nil {
		return err
	}

	g.sweepInvalidReferences()

	order := []Row{RowOd, RowAd, RowBd, RowPd}
	for _, row := range order {
		if err := g.connectDestRow(reg, row); err != nil {
			return err
		}
	}

	if err := g.mirrorDanglingSources(); err != nil {
		return err
	}

	g.conns = g.buildConnections()
	if err := g.checkConformance(reg); err != nil {
		return err
	}

	if err := g.Freeze(); err != nil {
		return err
	}
	g.stable = true
	return nil
}

// sweepInvalidReferences drops any destination Ref that points at a row
// not permitted to feed that destination under the current graph type
// (spec §4.4 step 2).
func (g *CGraph) sweepInvalidReferences() {
	for row, itf := range g.rows {
		if itf == nil || row.Class() != iface.Dst {
			continue
		}
		allowed := make(map[Row]bool)
		for _, r := range validSources(g.graphType, row) {
			allowed[r] = true
		}
		changed := false
		eps := itf.Endpoints()
		for i, ep := range eps {
			kept := ep.Refs[:0:0]
			for _, ref := range ep.Refs {
				if allowed[Row(ref.Row)] {
					kept = append(kept, ref)
				} else {
					changed = true
				}
			}
			eps[i].Refs = kept
		}
		if changed {
			if next, err := iface.New(string(row), iface.Dst, eps); err == nil {
				g.rows[row] = next
			}
		}
	}
}

// ConnectAll is the simpler sibling of Stabilize (spec §4.4): it assumes
// every destination endpoint already has a legal conforming candidate
// source present and only fills in references, never synthesising new
// endpoints. Used after operators that guarantee shape-compatible
// sub-graphs (e.g. perfect-stack).
func (g *CGraph) ConnectAll(reg *typedef.Registry) error {
	if g.IsFrozen() {
		return egperr.New(egperr.InvariantViolation, "cannot connect an already-frozen graph")
	}
	present := g.presentRows()
	if err := validateRowCombination(g.graphType, present); err != nil {
		return err
	}
	for _, row := range allRows {
		if row.Class() != iface.Dst {
			continue
		}
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		for idx := 0; idx < itf.Len(); idx++ {
			ep := itf.At(idx)
			if len(ep.Refs) > 0 {
				continue
			}
			c, found, err := g.findSource(reg, row, ep.Typ)
			if err != nil {
				return err
			}
			if !found {
				return egperr.Newf(egperr.UnsatisfiableInterface, "no conforming source for %s[%d]", row, idx)
			}
			ep.Refs = append(ep.Refs, iface.Ref{Row: string(c.row), Idx: c.idx})
			if err := itf.Set(idx, ep); err != nil {
				return err
			}
		}
	}
	if err := g.mirrorDanglingSources(); err != nil {
		return err
	}
	g.conns = g.buildConnections()
	if err := g.checkConformance(reg); err != nil {
		return err
	}
	if err := g.Freeze(); err != nil {
		return err
	}
	g.stable = true
	return nil
}
