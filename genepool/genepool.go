package genepool

import (
	"context"

	"github.com/erasmus-gp/egpcore/cache"
	"github.com/erasmus-gp/egpcore/egpconfig"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/egplog"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
)

// Interface is the Gene Pool Interface a worker talks to (spec §4.8):
// get/set through the cache hierarchy, plus the physics-layer sampling
// operations that bypass the cache and query the library directly.
type Interface struct {
	l1  cache.Layer[genecode.Signature, *genecode.GC]
	lib Library
}

// New builds a Gene Pool Interface over lib, stacking an L1 "dirty"
// layer over an L2 LRU layer over lib itself (spec §4.7's three-layer
// hierarchy, with the library playing the terminal Store role). Only
// l2Cfg is applied; the L1 layer is always unbounded and l1Cfg is not
// read.
func New(lib Library, l1Cfg, l2Cfg egpconfig.CacheLayerConfig) *Interface {
	store := &libraryStore{lib: lib}
	l2 := cache.NewLRUCache[genecode.Signature, *genecode.GC](store, l2Cfg.MaxItems, l2Cfg.PurgeCount)
	l1 := cache.NewDictCache[genecode.Signature, *genecode.GC](l2)
	return &Interface{l1: l1, lib: lib}
}

// Get loads the GC with signature sig via the cache stack (spec §4.8:
// "get(signature) -> GC via the cache stack").
func (gp *Interface) Get(ctx context.Context, sig genecode.Signature) (*genecode.GC, error) {
	return gp.l1.Get(ctx, sig)
}

// Set writes gc through the cache (spec §4.8: "set(signature, gc) writes
// through the cache"): gc is stored in L1 and the hierarchy's dirty
// entries are then copied down to the library, so gc is persisted when
// Set returns. gc must be frozen and stable; its own Signature() is used
// as the key.
func (gp *Interface) Set(ctx context.Context, gc *genecode.GC) error {
	if !gc.IsFrozen() {
		return egperr.New(egperr.StructuralError, "only a frozen, stable genetic code may be stored in the Gene Pool")
	}
	if err := gp.l1.Set(ctx, gc.Signature(), gc); err != nil {
		return err
	}
	return gp.l1.Copythrough(ctx)
}

// Select runs a parametric query over the underlying library, bypassing
// the cache stack (spec §4.8).
func (gp *Interface) Select(ctx context.Context, filterSQL, orderSQL string, limit int, literals []any) ([]genecode.Signature, error) {
	return gp.lib.Select(ctx, filterSQL, orderSQL, limit, literals)
}

// InitialGenerationQuery seeds a population from the library according
// to cfg (spec §4.8).
func (gp *Interface) InitialGenerationQuery(ctx context.Context, cfg PopulationConfig) ([]genecode.Signature, error) {
	filterSQL := "properties & 3 = 1"
	if cfg.RequireDeterministic {
		filterSQL += " AND (properties >> 9) & 1 = 1"
	}
	return gp.lib.Select(ctx, filterSQL, "generation ASC", cfg.Size, nil)
}

// SelectInterface looks up a GC by exact Od interface shape (spec §4.8:
// "select_interface(iface) -> signature | None").
func (gp *Interface) SelectInterface(ctx context.Context, itf *iface.Interface) (genecode.Signature, error) {
	return gp.lib.SelectInterface(ctx, itf)
}

// Boot bootstraps the library with seeds if it is currently empty (spec
// §4.8: "The Gene Pool boots the library ... if the table is empty").
// Seeds are typically loaded via seed.LoadSigned before being passed
// here.
func (gp *Interface) Boot(ctx context.Context, seeds []*genecode.GC) error {
	n, err := gp.lib.Len(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		egplog.L("genepool").V(egplog.Debug).Info("library already populated, skipping bootstrap", "count", n)
		return nil
	}
	for _, gc := range seeds {
		if err := gp.Set(ctx, gc); err != nil {
			return err
		}
	}
	egplog.L("genepool").Info("bootstrapped empty library", "seeds", len(seeds))
	return nil
}

// Copythrough flushes every dirty entry across the cache hierarchy down
// to the library, used before shutdown to guarantee no writes are lost.
func (gp *Interface) Copythrough(ctx context.Context) error {
	return gp.l1.Copythrough(ctx)
}
