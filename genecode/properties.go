// Package genecode implements the Genetic Code record (spec component E):
// an immutable, content-addressed record wrapping a stable Connection
// Graph plus provenance, metrics, and a packed properties bitfield.
package genecode

import (
	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egperr"
)

// GCType occupies bits 0-1 of Properties (spec §6.3).
type GCType uint8

const (
	// Codon marks an atomic, irreducible genetic code.
	Codon GCType = iota
	// Ordinary marks a genetic code built from sub-graphs.
	Ordinary
	_ // reserved
	_ // reserved
)

// Properties is the 64-bit packed bitfield spec §6.3 describes, little-
// endian when serialised to bytes.
type Properties struct {
	GCType         GCType
	GraphType      cgraph.GraphType
	Constant       bool
	Deterministic  bool
	Abstract       bool
	SideEffects    bool
	StaticCreation bool
	Simplification uint8 // CODON-specific, bits 16-23
	Literal        bool  // ORDINARY-specific, bit 16
}

const (
	bitConstant       = 8
	bitDeterministic  = 9
	bitAbstract       = 10
	bitSideEffects    = 11
	bitStaticCreation = 12
	bitLiteral        = 16
)

// Encode packs p into the 64-bit little-endian bitfield layout spec §6.3
// defines.
func Encode(p Properties) uint64 {
	var v uint64
	v |= uint64(p.GCType) & 0b11
	v |= (uint64(p.GraphType) & 0b1111) << 2
	if p.Constant {
		v |= 1 << bitConstant
	}
	if p.Deterministic {
		v |= 1 << bitDeterministic
	}
	if p.Abstract {
		v |= 1 << bitAbstract
	}
	if p.SideEffects {
		v |= 1 << bitSideEffects
	}
	if p.StaticCreation {
		v |= 1 << bitStaticCreation
	}
	switch p.GCType {
	case Codon:
		v |= uint64(p.Simplification&0xFF) << 16
	case Ordinary:
		if p.Literal {
			v |= 1 << bitLiteral
		}
	}
	return v
}

// Decode unpacks the 64-bit bitfield back into Properties. Decode(Encode(p))
// must equal p for every valid p (spec §8 property 5, stated there for
// the identical encode_properties/decode_properties pair).
func Decode(v uint64) Properties {
	p := Properties{
		GCType:         GCType(v & 0b11),
		GraphType:      cgraph.GraphType((v >> 2) & 0b1111),
		Constant:       v&(1<<bitConstant) != 0,
		Deterministic:  v&(1<<bitDeterministic) != 0,
		Abstract:       v&(1<<bitAbstract) != 0,
		SideEffects:    v&(1<<bitSideEffects) != 0,
		StaticCreation: v&(1<<bitStaticCreation) != 0,
	}
	switch p.GCType {
	case Codon:
		p.Simplification = uint8((v >> 16) & 0xFF)
	case Ordinary:
		p.Literal = v&(1<<bitLiteral) != 0
	}
	return p
}

// Verify enforces spec §6.3's invariants: constant implies deterministic,
// and a CODON with graph_type EMPTY is illegal.
func (p Properties) Verify() error {
	if p.Constant && !p.Deterministic {
		return egperr.New(egperr.InvariantViolation, "constant properties must also be deterministic")
	}
	if p.GCType == Codon && p.GraphType == cgraph.Empty {
		return egperr.New(egperr.InvariantViolation, "a codon cannot have graph_type EMPTY")
	}
	return nil
}
