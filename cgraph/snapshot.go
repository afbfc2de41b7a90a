package cgraph

import (
	"time"

	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/typedef"
)

// EndpointSnapshot is one endpoint's reconstructible state: its canonical
// type string and wired references. ToJSON's canonical form (spec §6.2)
// is a one-way display/hash format; Snapshot exists alongside it for a
// persistent store that needs to rebuild the graph exactly, not just
// render it.
type EndpointSnapshot struct {
	Type string
	Refs []iface.Ref
}

// RowSnapshot is one row's reconstructible state.
type RowSnapshot struct {
	Row       Row
	Class     iface.Class
	Endpoints []EndpointSnapshot
}

// Snapshot is a frozen CGraph's full reconstructible state.
type Snapshot struct {
	GraphType GraphType
	Created   int64 // unix nanoseconds
	Rows      []RowSnapshot
	Conns     []Connection
}

// Snapshot captures g's full reconstructible state. g must already be
// frozen; a Gene Pool library persists this alongside the canonical
// ToJSON form used for display and hashing.
func (g *CGraph) Snapshot() (Snapshot, error) {
	if !g.IsFrozen() {
		return Snapshot{}, egperr.New(egperr.StructuralError, "cannot snapshot a connection graph that is not frozen")
	}
	snap := Snapshot{
		GraphType: g.graphType,
		Created:   g.created.UnixNano(),
		Conns:     g.Connections(),
	}
	for _, row := range allRows {
		itf := g.rows[row]
		if itf == nil {
			continue
		}
		rs := RowSnapshot{Row: row, Class: itf.Class()}
		for i := 0; i < itf.Len(); i++ {
			ep := itf.At(i)
			rs.Endpoints = append(rs.Endpoints, EndpointSnapshot{
				Type: ep.Typ.String(),
				Refs: append([]iface.Ref(nil), ep.Refs...),
			})
		}
		snap.Rows = append(snap.Rows, rs)
	}
	return snap, nil
}

// FromSnapshot rebuilds a frozen, stable CGraph from a previously captured
// Snapshot, resolving every endpoint's canonical type string through reg
// (spec §4.1's Type Registry) instead of re-running Stabilize: the
// snapshot already carries a stable graph's resolved connections.
func FromSnapshot(reg *typedef.Registry, snap Snapshot) (*CGraph, error) {
	g := New(snap.GraphType, time.Unix(0, snap.Created))
	for _, rs := range snap.Rows {
		eps := make([]iface.Endpoint, len(rs.Endpoints))
		for i, es := range rs.Endpoints {
			typ, err := ept.FromTemplate(reg, es.Type)
			if err != nil {
				return nil, err
			}
			eps[i] = iface.Endpoint{
				Row:   string(rs.Row),
				Idx:   i,
				Class: rs.Class,
				Typ:   typ,
				Refs:  append([]iface.Ref(nil), es.Refs...),
			}
		}
		itf, err := iface.New(string(rs.Row), rs.Class, eps)
		if err != nil {
			return nil, err
		}
		if err := itf.Freeze(); err != nil {
			return nil, err
		}
		if err := g.SetRow(rs.Row, itf); err != nil {
			return nil, err
		}
	}
	g.conns = append([]Connection(nil), snap.Conns...)
	g.stable = true
	if err := g.Freeze(); err != nil {
		return nil, err
	}
	g.MarkClean()
	return g, nil
}
