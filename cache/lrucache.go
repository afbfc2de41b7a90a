package cache

import (
	"context"

	"github.com/erasmus-gp/egpcore/egperr"
)

// LRUCache is the L2 main-working-set layer: bounded by MaxItems,
// evicting the single oldest-touched entry whenever an insertion (from
// either Set or a read-through miss) would exceed the bound, and
// evicting PurgeCount entries in ascending sequence-number order when
// Purge is called explicitly as a maintenance sweep (spec §4.7). It is
// the layer most reads and writes pass through.
type LRUCache[K comparable, V any] struct {
	dictCache[K, V]
	maxItems   int
	purgeCount int
}

// NewLRUCache returns an L2 layer bounded to maxItems entries, evicting
// purgeCount at a time on an explicit Purge, backed by nextLevel.
func NewLRUCache[K comparable, V any](nextLevel Store[K, V], maxItems, purgeCount int) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		dictCache:  dictCache[K, V]{data: make(map[K]*entry[V]), nextLevel: nextLevel},
		maxItems:   maxItems,
		purgeCount: purgeCount,
	}
}

// ensureRoomFor evicts the single oldest-touched entry if key is absent
// and the layer is already at capacity, so the insertion that follows
// never grows the layer past maxItems.
func (c *LRUCache[K, V]) ensureRoomFor(ctx context.Context, key K) error {
	c.mu.Lock()
	_, exists := c.data[key]
	atCapacity := !exists && c.maxItems > 0 && len(c.data) >= c.maxItems
	c.mu.Unlock()
	if !atCapacity {
		return nil
	}
	return c.purge(ctx, 1)
}

// Get reads through to NextLevel on a miss, then, same as Set, runs the
// single-victim purge-check before caching the fetched value (spec §8
// scenario S6: reading a key absent from L2 can itself force an
// eviction when L2 is already full).
func (c *LRUCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	if e, ok := c.data[key]; ok {
		e.Touch()
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if c.nextLevel == nil {
		var zero V
		return zero, egperr.New(egperr.NotFound, "key absent and no next level configured")
	}
	v, err := c.nextLevel.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := c.ensureRoomFor(ctx, key); err != nil {
		return v, err
	}

	c.mu.Lock()
	c.data[key] = newEntry(v)
	c.mu.Unlock()
	return v, nil
}

// Set runs the single-victim purge-check before inserting (spec §4.7:
// "set(key, value) runs a purge-check first").
func (c *LRUCache[K, V]) Set(ctx context.Context, key K, value V) error {
	if err := c.ensureRoomFor(ctx, key); err != nil {
		return err
	}
	c.set(key, value)
	return nil
}

func (c *LRUCache[K, V]) Delete(_ context.Context, key K) error {
	c.delete(key)
	return nil
}

func (c *LRUCache[K, V]) Touch(key K) { c.touch(key) }

func (c *LRUCache[K, V]) Flush(ctx context.Context) error { return c.flush(ctx) }

// Purge evicts the n oldest-touched entries as an explicit maintenance
// sweep; callers typically pass the configured PurgeCount.
func (c *LRUCache[K, V]) Purge(ctx context.Context, n int) error { return c.purge(ctx, n) }

// PurgeCount returns the configured batch size for explicit Purge calls.
func (c *LRUCache[K, V]) PurgeCount() int { return c.purgeCount }

func (c *LRUCache[K, V]) Copyback(ctx context.Context) error { return c.copyback(ctx) }

func (c *LRUCache[K, V]) Copythrough(ctx context.Context) error { return c.copythrough(ctx) }
