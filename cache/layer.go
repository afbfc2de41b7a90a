package cache

import (
	"context"
	"sync"

	"github.com/erasmus-gp/egpcore/cacheable"
	"github.com/erasmus-gp/egpcore/egperr"
)

// Layer extends Store with the writeback and eviction operations every
// cache layer (but not the terminal Store) supports (spec §4.7: "plus
// copyback, copythrough, flush, purge").
type Layer[K comparable, V any] interface {
	Store[K, V]

	// Touch updates key's sequence number without changing its dirty
	// state (spec §3.6 touch()).
	Touch(key K)

	// Flush writes every dirty entry to NextLevel and removes all
	// entries from this layer.
	Flush(ctx context.Context) error

	// Purge evicts the n entries with the smallest sequence number,
	// pushing dirty ones to NextLevel first. If n >= Len, Purge behaves
	// as Flush (spec §4.7 purge semantics).
	Purge(ctx context.Context, n int) error

	// Copyback writes every dirty entry to NextLevel without evicting.
	Copyback(ctx context.Context) error

	// Copythrough behaves as Copyback, and additionally recurses into
	// NextLevel if NextLevel is itself a Layer (spec §4.7).
	Copythrough(ctx context.Context) error

	// NextLevel returns the Store this layer writes back to and reads
	// through on a miss.
	NextLevel() Store[K, V]
}

// entry wraps a cached value with the dirty/seq_num mixin spec §4.6
// describes, applied to the cache slot itself rather than to the
// domain value it holds — so reflavoring a value between layers (spec
// §4.7: "reflavored to L1's object type via a shallow reconstruction so
// the L1 dirty bit does not leak downward") is simply wrapping it in a
// fresh entry, never mutating the value's own state.
type entry[V any] struct {
	cacheable.Base
	value V
}

func newEntry[V any](value V) *entry[V] {
	e := &entry[V]{value: value}
	e.Touch()
	return e
}

// seqLocked reports the entry's sequence number under the owning
// layer's lock; callers must hold that lock.
func (e *entry[V]) seqLocked() int64 { return e.SeqNum() }

// dictCache is the shared implementation backing both DictCache (L1) and
// LRUCache (L2); the two differ only in whether Set and read-through
// misses purge-check and whether Purge evicts or always fails.
type dictCache[K comparable, V any] struct {
	mu        sync.RWMutex
	data      map[K]*entry[V]
	nextLevel Store[K, V]
}

func (c *dictCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *dictCache[K, V]) NextLevel() Store[K, V] { return c.nextLevel }

func (c *dictCache[K, V]) get(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	e, ok := c.data[key]
	if ok {
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

	c.mu.Lock()
	c.data[key] = newEntry(v)
	c.mu.Unlock()
	return v, nil
}

func (c *dictCache[K, V]) set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := newEntry(value)
	e.MarkDirty()
	c.data[key] = e
}

func (c *dictCache[K, V]) delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func (c *dictCache[K, V]) touch(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.data[key]; ok {
		e.Touch()
	}
}

// flush writes every dirty entry to nextLevel and empties the layer.
func (c *dictCache[K, V]) flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.copybackLocked(ctx); err != nil {
		return err
	}
	c.data = make(map[K]*entry[V])
	return nil
}

func (c *dictCache[K, V]) copybackLocked(ctx context.Context) error {
	if c.nextLevel == nil {
		return nil
	}
	for k, e := range c.data {
		if e.IsDirty() {
			if err := c.nextLevel.Set(ctx, k, e.value); err != nil {
				return err
			}
			e.MarkClean()
		}
	}
	return nil
}

func (c *dictCache[K, V]) copyback(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copybackLocked(ctx)
}

func (c *dictCache[K, V]) copythrough(ctx context.Context) error {
	if err := c.copyback(ctx); err != nil {
		return err
	}
	if next, ok := c.nextLevel.(interface {
		Copythrough(context.Context) error
	}); ok {
		return next.Copythrough(ctx)
	}
	return nil
}

// purgeLocked evicts the n entries with the smallest sequence number.
// Callers must hold c.mu.
func (c *dictCache[K, V]) purgeLocked(ctx context.Context, n int) error {
	if n >= len(c.data) {
		return c.flushLocked(ctx)
	}
	type keyed struct {
		key K
		seq int64
	}
	victims := make([]keyed, 0, len(c.data))
	for k, e := range c.data {
		victims = append(victims, keyed{k, e.seqLocked()})
	}
	// Partial selection sort for the n smallest sequence numbers; cache
	// layers purge small batches at a time (purge_count), so this stays
	// cheap without needing a heap.
	for i := 0; i < n; i++ {
		min := i
		for j := i + 1; j < len(victims); j++ {
			if victims[j].seq < victims[min].seq {
				min = j
			}
		}
		victims[i], victims[min] = victims[min], victims[i]
	}
	for i := 0; i < n; i++ {
		k := victims[i].key
		e := c.data[k]
		if e.IsDirty() && c.nextLevel != nil {
			if err := c.nextLevel.Set(ctx, k, e.value); err != nil {
				return err
			}
		}
		delete(c.data, k)
	}
	return nil
}

func (c *dictCache[K, V]) flushLocked(ctx context.Context) error {
	if err := c.copybackLocked(ctx); err != nil {
		return err
	}
	c.data = make(map[K]*entry[V])
	return nil
}

func (c *dictCache[K, V]) purge(ctx context.Context, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked(ctx, n)
}
