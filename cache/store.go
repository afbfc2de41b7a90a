// Package cache implements the EGP core's three-layer cache hierarchy
// (spec §4.7): an unbounded L1 "dirty" write-coalescing layer, a
// bounded L2 LRU working set, and a Store of last resort (in-memory or
// DB-backed) that is the source of truth.
//
// All three layer flavours, and the terminal Store, share the same
// map-like contract so a worker session can stack them transparently:
// L1 -> L2 -> Store, with Get misses falling through and Set writes
// flowing down according to each layer's own writeback policy.
package cache

import (
	"context"

	"github.com/erasmus-gp/egpcore/egperr"
)

// Store is the map-like contract every layer, and the terminal source of
// truth, implements (spec §4.7: "all implementing the same map-like
// contract").
type Store[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, error)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	Len() int
}

// MemStore is an unbounded in-memory Store: the simplest possible
// "source of truth" layer, used directly in tests and by any worker that
// has not wired a DB-backed Gene Pool. A DB-backed genepool.Library is
// not itself a Store; package genepool adapts one to this Store
// interface to use it as the terminal layer.
type MemStore[K comparable, V any] struct {
	data map[K]V
}

// NewMemStore returns an empty MemStore.
func NewMemStore[K comparable, V any]() *MemStore[K, V] {
	return &MemStore[K, V]{data: make(map[K]V)}
}

func (s *MemStore[K, V]) Get(_ context.Context, key K) (V, error) {
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, egperr.New(egperr.NotFound, "key absent from store")
	}
	return v, nil
}

func (s *MemStore[K, V]) Set(_ context.Context, key K, value V) error {
	s.data[key] = value
	return nil
}

func (s *MemStore[K, V]) Delete(_ context.Context, key K) error {
	delete(s.data, key)
	return nil
}

func (s *MemStore[K, V]) Len() int { return len(s.data) }
