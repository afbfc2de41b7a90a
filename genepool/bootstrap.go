package genepool

import (
	"context"
	"crypto/ed25519"

	"github.com/erasmus-gp/egpcore/egpconfig"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/seed"
	"github.com/erasmus-gp/egpcore/typedef"
)

// Bootstrap loads the signed seed bundle named by cfg, registers its type
// definitions in reg, and hands the reconstructed codon/meta-codon
// records to Boot, which is a no-op if the library is already populated
// (spec §6.6). reg must be the same registry the Gene Pool's worker
// session will use to resolve endpoint types afterwards.
func (gp *Interface) Bootstrap(ctx context.Context, reg *typedef.Registry, cfg egpconfig.SeedConfig) error {
	if len(cfg.PublicKey) != ed25519.PublicKeySize {
		return egperr.Newf(egperr.StructuralError, "seed public key must be %d bytes, got %d", ed25519.PublicKeySize, len(cfg.PublicKey))
	}
	bundle, err := seed.LoadSigned(cfg.JSONPath, cfg.SignaturePath, ed25519.PublicKey(cfg.PublicKey))
	if err != nil {
		return err
	}
	if err := reg.LoadJSON(bundle.Types); err != nil {
		return err
	}

	codons := make([]*genecode.GC, 0, len(bundle.Codons))
	for _, rec := range bundle.Codons {
		gc, err := genecode.FromRecord(reg, rec)
		if err != nil {
			return err
		}
		codons = append(codons, gc)
	}
	return gp.Boot(ctx, codons)
}
