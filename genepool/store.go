package genepool

import (
	"context"

	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/genecode"
)

// libraryStore adapts a Library to cache.Store so it can sit as the
// terminal NextLevel under the L1/L2 cache stack (spec §4.7's "Store:
// unbounded (in-memory) or DB-backed").
type libraryStore struct {
	lib Library
}

func (s *libraryStore) Get(ctx context.Context, key genecode.Signature) (*genecode.GC, error) {
	return s.lib.Get(ctx, key)
}

func (s *libraryStore) Set(ctx context.Context, key genecode.Signature, value *genecode.GC) error {
	if value.Signature() != key {
		return egperr.New(egperr.StructuralError, "genetic code signature does not match its cache key")
	}
	return s.lib.Put(ctx, value)
}

// Delete is not meaningful for a content-addressed, append-only library:
// a GC's signature is derived from its own content, so entries are never
// individually revoked once written (spec §3.5: the Gene Pool is the
// durable source of truth for stable GCs).
func (s *libraryStore) Delete(context.Context, genecode.Signature) error {
	return egperr.New(egperr.StructuralError, "the Gene Pool library does not support deleting a genetic code by signature")
}

func (s *libraryStore) Len() int {
	n, err := s.lib.Len(context.Background())
	if err != nil {
		return 0
	}
	return n
}
