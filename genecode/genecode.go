package genecode

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/erasmus-gp/egpcore/cacheable"
	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egperr"
)

// Signature is a 32-byte content address. The all-zero value is the
// canonical NULL (spec §6.5).
type Signature [32]byte

// IsNull reports whether s is the all-zero NULL signature.
func (s Signature) IsNull() bool {
	return s == Signature{}
}

// String renders s as a hex string, the form used throughout logs,
// Mermaid charts and seed documents.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// MarshalText implements encoding.TextMarshaler so a Signature serialises
// as a hex string in JSON rather than an array of 32 small integers.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Signature) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return egperr.New(egperr.ParseError, "malformed signature hex string").WithCause(err)
	}
	if len(decoded) != len(s) {
		return egperr.Newf(egperr.ParseError, "signature must be %d bytes, got %d", len(s), len(decoded))
	}
	copy(s[:], decoded)
	return nil
}

// References bundles the five named 32-byte reference signatures a GC
// carries (spec §3.5/§6.1: gca, gcb, ancestora, ancestorb, pgc).
type References struct {
	GCA       Signature
	GCB       Signature
	AncestorA Signature
	AncestorB Signature
	PGC       Signature
}

// Metrics holds the static and dynamic derived metrics the library
// schema carries alongside a GC (spec §6.1: num_codons, num_codes,
// generation, code_depth, and the two-layer HL/CL evolvability/fitness
// counters).
type Metrics struct {
	NumCodons  int32
	NumCodes   int32
	Generation int32
	CodeDepth  int32

	// High-layer (population-relative) counters.
	ECountHL     int64
	ETotalHL     int64
	EvolvabilHL  float64
	FCountHL     int64
	FTotalHL     int64
	FitnessHL    float64

	// Current-layer (problem-relative) counters.
	ECountCL    int64
	ETotalCL    int64
	EvolvabilCL float64
	FCountCL    int64
	FTotalCL    int64
	FitnessCL   float64
}

// GC is a Genetic Code record: a content-addressed wrapper around a
// stable Connection Graph plus provenance, metrics and the packed
// properties bitfield (spec §3.5).
type GC struct {
	cacheable.Base
	cacheable.FreezeState

	cgraph     *cgraph.CGraph
	refs       References
	created    time.Time
	creator    uuid.UUID
	properties Properties
	signature  Signature
	metaData   []byte
	metrics    Metrics
}

// New constructs an embryonic GC from a stable CGraph. The signature is
// not computed until Freeze.
func New(g *cgraph.CGraph, refs References, creator uuid.UUID, properties Properties, metaData []byte) (*GC, error) {
	if g == nil {
		return nil, egperr.New(egperr.StructuralError, "a genetic code requires a cgraph")
	}
	if err := properties.Verify(); err != nil {
		return nil, err
	}
	return &GC{
		cgraph:     g,
		refs:       refs,
		created:    time.Now().UTC(),
		creator:    creator,
		properties: properties,
		metaData:   metaData,
	}, nil
}

// FromOverride constructs a new GC by copying base and applying the
// supplied overrides, mirroring the "from another GC, copy plus
// overrides" construction path (spec §4.5). Overrides left at their
// zero value keep base's field.
func FromOverride(base *GC, overrides GC) (*GC, error) {
	if base == nil {
		return nil, egperr.New(egperr.StructuralError, "FromOverride requires a base GC")
	}
	next := *base
	next.Base = cacheable.Base{}
	next.FreezeState = cacheable.FreezeState{}
	next.signature = Signature{}
	if overrides.cgraph != nil {
		next.cgraph = overrides.cgraph
	}
	if !overrides.refs.GCA.IsNull() {
		next.refs.GCA = overrides.refs.GCA
	}
	if !overrides.refs.GCB.IsNull() {
		next.refs.GCB = overrides.refs.GCB
	}
	if !overrides.refs.AncestorA.IsNull() {
		next.refs.AncestorA = overrides.refs.AncestorA
	}
	if !overrides.refs.AncestorB.IsNull() {
		next.refs.AncestorB = overrides.refs.AncestorB
	}
	if !overrides.refs.PGC.IsNull() {
		next.refs.PGC = overrides.refs.PGC
	}
	if overrides.creator != uuid.Nil {
		next.creator = overrides.creator
	}
	if overrides.properties != (Properties{}) {
		next.properties = overrides.properties
	}
	if overrides.metaData != nil {
		next.metaData = overrides.metaData
	}
	next.created = time.Now().UTC()
	if err := next.properties.Verify(); err != nil {
		return nil, err
	}
	return &next, nil
}

// CGraph returns the GC's connection graph.
func (g *GC) CGraph() *cgraph.CGraph { return g.cgraph }

// References returns the GC's five named 32-byte reference signatures.
func (g *GC) References() References { return g.refs }

// Created returns the GC's creation timestamp.
func (g *GC) Created() time.Time { return g.created }

// Creator returns the GC's creator UUID.
func (g *GC) Creator() uuid.UUID { return g.creator }

// Properties returns the GC's decoded properties bitfield.
func (g *GC) Properties() Properties { return g.properties }

// MetaData returns the GC's free-form metadata blob.
func (g *GC) MetaData() []byte { return g.metaData }

// Metrics returns the GC's derived metrics.
func (g *GC) Metrics() Metrics { return g.metrics }

// SetMetrics replaces the GC's derived metrics. Metrics are mutable even
// after Freeze since they are recomputed continuously as the GC is
// selected and scored; they are not part of the signature (spec §4.5
// lists only cgraph, references, meta_data, created and creator as
// signature inputs).
func (g *GC) SetMetrics(m Metrics) {
	g.metrics = m
	g.MarkDirty()
}

// Signature returns the GC's content address. It is the zero Signature
// until Freeze has been called.
func (g *GC) Signature() Signature { return g.signature }

// IsCodon reports whether g is an atomic, irreducible genetic code: its
// cgraph is PRIMITIVE and gca, gcb, ancestora and pgc are all NULL
// (spec §3.5).
func (g *GC) IsCodon() bool {
	return g.cgraph.GraphType() == cgraph.Primitive &&
		g.refs.GCA.IsNull() && g.refs.GCB.IsNull() &&
		g.refs.AncestorA.IsNull() && g.refs.PGC.IsNull()
}

// IsMeta reports whether g is a meta-codon: a codon whose properties
// mark it abstract (spec glossary: meta-codons operate over abstract
// endpoint types rather than concrete ones).
func (g *GC) IsMeta() bool {
	return g.IsCodon() && g.properties.Abstract
}

// IsPGC reports whether g is treated as a Physical Genetic Code: a GC
// produced by, and capable of producing, other GCs. It is identified
// solely by the static_creation property; reference signatures are not
// examined.
func (g *GC) IsPGC() bool {
	return g.properties.StaticCreation
}

// IsConditional reports whether g's cgraph encodes a branch or loop.
func (g *GC) IsConditional() bool {
	switch g.cgraph.GraphType() {
	case cgraph.IfThen, cgraph.IfThenElse, cgraph.ForLoop, cgraph.WhileLoop:
		return true
	default:
		return false
	}
}

// Verify performs the fast structural checks spec §3.6 asks of every
// cacheable object: the properties bitfield's own invariants, and the
// codon/graph-type consistency rule (gc_type == CODON requires graph_type
// != EMPTY, already enforced by Properties.Verify, plus the stronger
// rule that a GC claiming to be a codon via IsCodon must carry a
// PRIMITIVE graph).
func (g *GC) Verify() error {
	if err := g.properties.Verify(); err != nil {
		return err
	}
	if g.properties.GCType == Codon && g.cgraph.GraphType() != cgraph.Primitive {
		return egperr.New(egperr.StructuralError, "a CODON-typed genetic code must have a PRIMITIVE cgraph")
	}
	return g.cgraph.Verify()
}

// Consistency performs the slow semantic checks spec §3.6 asks of every
// cacheable object: structural Verify, the underlying cgraph's own
// consistency check, and signature recomputation.
func (g *GC) Consistency() error {
	if err := g.Verify(); err != nil {
		return err
	}
	if err := g.cgraph.Consistency(); err != nil {
		return err
	}
	if g.IsFrozen() {
		want, err := computeSignature(g)
		if err != nil {
			return err
		}
		if want != g.signature {
			return egperr.Newf(egperr.SignatureMismatch, "recomputed signature does not match stored signature").WithSubject(g.signature.String())
		}
	}
	return nil
}
