package genecode

import (
	"time"

	"github.com/google/uuid"

	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/typedef"
)

// Record is the Gene Pool library's persistable row shape for a GC (spec
// §6.1): the queryable scalar columns plus the cgraph's reconstructible
// Snapshot. genepool/pgstore maps Record onto the library's table; a
// msgpack envelope or any other encoding can serialise Record directly.
type Record struct {
	Signature  Signature
	GCA        Signature
	GCB        Signature
	AncestorA  Signature
	AncestorB  Signature
	PGC        Signature
	Created    int64 // unix microseconds, matching the signature's own time encoding
	Creator    uuid.UUID
	Properties uint64
	MetaData   []byte
	Metrics    Metrics
	Graph      cgraph.Snapshot
}

// Record renders g as a persistable Record. g must be frozen.
func (g *GC) Record() (Record, error) {
	if !g.IsFrozen() {
		return Record{}, egperr.New(egperr.StructuralError, "cannot persist a genetic code that has not been frozen")
	}
	snap, err := g.cgraph.Snapshot()
	if err != nil {
		return Record{}, err
	}
	return Record{
		Signature:  g.signature,
		GCA:        g.refs.GCA,
		GCB:        g.refs.GCB,
		AncestorA:  g.refs.AncestorA,
		AncestorB:  g.refs.AncestorB,
		PGC:        g.refs.PGC,
		Created:    g.created.UnixMicro(),
		Creator:    g.creator,
		Properties: Encode(g.properties),
		MetaData:   g.metaData,
		Metrics:    g.metrics,
		Graph:      snap,
	}, nil
}

// FromRecord rebuilds a frozen GC from a previously persisted Record,
// resolving the cgraph's endpoint types through reg. The stored signature
// is trusted as-is; call Consistency on the result to verify it against a
// freshly recomputed signature, e.g. after loading from an untrusted
// source.
func FromRecord(reg *typedef.Registry, rec Record) (*GC, error) {
	g, err := cgraph.FromSnapshot(reg, rec.Graph)
	if err != nil {
		return nil, err
	}
	properties := Decode(rec.Properties)
	if err := properties.Verify(); err != nil {
		return nil, err
	}
	gc := &GC{
		cgraph: g,
		refs: References{
			GCA:       rec.GCA,
			GCB:       rec.GCB,
			AncestorA: rec.AncestorA,
			AncestorB: rec.AncestorB,
			PGC:       rec.PGC,
		},
		created:    time.UnixMicro(rec.Created).UTC(),
		creator:    rec.Creator,
		properties: properties,
		metaData:   rec.MetaData,
		metrics:    rec.Metrics,
		signature:  rec.Signature,
	}
	gc.FreezeState.Freeze()
	gc.MarkClean()
	return gc, nil
}
