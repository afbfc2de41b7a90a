package cgraph

import (
	"math/rand"
	"time"

	"github.com/erasmus-gp/egpcore/cacheable"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/iface"
)

// Connection is a directed edge from a source endpoint to a destination
// endpoint. A graph keeps its own connection list; callers that want
// connections shared across graphs intern them through a ConnectionStore.
type Connection struct {
	SrcRow Row
	SrcIdx int
	DstRow Row
	DstIdx int
}

// DedupKey implements dedup.Keyed for an interned Connection.
func (c Connection) DedupKey() Connection { return c }

// CGraph is the central data structure of a Genetic Code (spec §3.4): up
// to twelve named rows, each an Interface, connected according to
// graphType. Constructed mutable (embryonic), turned stable by Stabilize,
// then frozen, at which point interfaces and connections are interned
// and the graph participates in content addressing.
type CGraph struct {
	cacheable.Base
	cacheable.FreezeState

	graphType GraphType
	rows      map[Row]*iface.Interface
	conns     []Connection
	created   time.Time
	stable    bool
	randSrc   *rand.Rand
}

// New constructs an embryonic CGraph of the given type and creation time.
// created seeds the deterministic RNG Stabilize uses, so two calls to
// Stabilize on graphs built with the same created timestamp and the same
// initial rows produce the same stabilisation (spec §4.4: "a deterministic
// RNG seeded from the graph's created timestamp").
func New(graphType GraphType, created time.Time) *CGraph {
	return &CGraph{
		graphType: graphType,
		rows:      make(map[Row]*iface.Interface),
		created:   created,
	}
}

// GraphType returns the graph's type.
func (g *CGraph) GraphType() GraphType { return g.graphType }

// Created returns the graph's creation timestamp.
func (g *CGraph) Created() time.Time { return g.created }

// IsStable reports whether Stabilize has successfully completed.
func (g *CGraph) IsStable() bool { return g.stable }

// SetRow installs itf as the named row's interface. Only legal before the
// graph is frozen (spec §4.4: "mutating setters are allowed only before
// freezing").
func (g *CGraph) SetRow(row Row, itf *iface.Interface) error {
	if g.IsFrozen() {
		return egperr.New(egperr.InvariantViolation, "cannot modify a frozen connection graph")
	}
	if itf != nil && itf.Row() != string(row) {
		return egperr.Newf(egperr.StructuralError, "interface row %q does not match target row %s", itf.Row(), row)
	}
	g.rows[row] = itf
	g.MarkDirty()
	return nil
}

// Row returns the interface installed at row, or nil if absent.
func (g *CGraph) Row(row Row) *iface.Interface { return g.rows[row] }

// Connections returns a copy of the interned connection list.
func (g *CGraph) Connections() []Connection {
	return append([]Connection(nil), g.conns...)
}

func (g *CGraph) presentRows() map[Row]bool {
	present := make(map[Row]bool, len(g.rows))
	for r, itf := range g.rows {
		if itf != nil {
			present[r] = true
		}
	}
	return present
}

// rng lazily creates the seeded RNG Stabilize uses to break ties among
// otherwise-equal candidate append rows, derived from the graph's created
// timestamp so reruns on an identical embryonic graph are reproducible
// (spec §4.4: "a deterministic RNG seeded from the graph's created
// timestamp"; "different seeds produce different but equally valid
// stabilisations").
func (g *CGraph) rng() *rand.Rand {
	if g.randSrc == nil {
		g.randSrc = rand.New(rand.NewSource(g.created.UnixNano()))
	}
	return g.randSrc
}
