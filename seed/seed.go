// Package seed loads the signed JSON bundle a Gene Pool bootstraps an
// empty library from: the founding type definitions and the codon/
// meta-codon genetic codes built over them (spec §3.1/§4.8, and the
// Design Note in spec.md §9 on "a signed JSON seed").
package seed

import (
	"crypto/ed25519"
	"encoding/json"
	"os"

	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/genecode"
)

// Bundle is the parsed contents of a signed seed document.
type Bundle struct {
	// Types is the raw type-definition JSON, passed directly to
	// typedef.Registry.LoadJSON once the signature has verified.
	Types json.RawMessage `json:"types"`
	// Codons are the founding codon/meta-codon records, already frozen,
	// ready to reconstruct via genecode.FromRecord once Types has been
	// loaded into the registry they reference.
	Codons []genecode.Record `json:"codons"`
}

// LoadSigned reads jsonPath and verifies it against the detached
// signature stored at sigPath before parsing it as a Bundle. Verification
// happens over the raw bytes, ahead of any JSON decoding, so a tampered
// document is rejected before its contents are trusted at all.
func LoadSigned(jsonPath, sigPath string, pub ed25519.PublicKey) (*Bundle, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, egperr.New(egperr.StructuralError, "reading seed document").WithCause(err)
	}
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return nil, egperr.New(egperr.StructuralError, "reading seed signature").WithCause(err)
	}
	if !ed25519.Verify(pub, data, sig) {
		return nil, egperr.New(egperr.InvariantViolation, "seed document signature does not verify")
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, egperr.New(egperr.ParseError, "malformed seed document").WithCause(err)
	}
	return &bundle, nil
}
