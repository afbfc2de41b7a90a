package cache

import (
	"context"

	"github.com/erasmus-gp/egpcore/egperr"
)

// DictCache is the L1 "dirty" layer: unbounded (NewDictCache takes no
// size, and no item limit is enforced), no automatic eviction, used to
// coalesce writes in a hot
// loop before writing them back en masse (spec §4.7). It does not
// support Purge; the owner must call Copyback or Flush explicitly.
type DictCache[K comparable, V any] struct {
	dictCache[K, V]
}

// NewDictCache returns an L1 layer backed by nextLevel. nextLevel may be
// nil for a pure write-coalescing buffer with no writeback target.
func NewDictCache[K comparable, V any](nextLevel Store[K, V]) *DictCache[K, V] {
	return &DictCache[K, V]{dictCache[K, V]{data: make(map[K]*entry[V]), nextLevel: nextLevel}}
}

func (c *DictCache[K, V]) Get(ctx context.Context, key K) (V, error) { return c.get(ctx, key) }

func (c *DictCache[K, V]) Set(_ context.Context, key K, value V) error {
	c.set(key, value)
	return nil
}

func (c *DictCache[K, V]) Delete(_ context.Context, key K) error {
	c.delete(key)
	return nil
}

func (c *DictCache[K, V]) Touch(key K) { c.touch(key) }

func (c *DictCache[K, V]) Flush(ctx context.Context) error { return c.flush(ctx) }

// Purge always fails on DictCache: an L1 layer has no automatic
// eviction policy, so there is no seq_num-based victim selection to
// perform (spec §4.7).
func (c *DictCache[K, V]) Purge(context.Context, int) error {
	return egperr.New(egperr.StructuralError, "DictCache does not support purge; call Copyback or Flush explicitly")
}

func (c *DictCache[K, V]) Copyback(ctx context.Context) error { return c.copyback(ctx) }

func (c *DictCache[K, V]) Copythrough(ctx context.Context) error { return c.copythrough(ctx) }
