package dedup

import "container/list"

// LRUSet interns values of type V keyed by K in a bounded LRU: once Size
// distinct keys have been seen, the least recently touched is evicted to
// make room for a new one. Used for short-lived but very hot objects
// where keeping them alive past their first strong ref still pays off,
// e.g. endpoint references created and discarded within one
// stabilisation walk.
type LRUSet[K comparable, V any] struct {
	size       int
	targetRate float64

	order  *list.List // front = most recently used
	index  map[K]*list.Element
	hits   int64
	misses int64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUSet returns an LRUSet bounded to size entries. targetRate is the
// break-even hit rate the caller expects in steady state; it is
// informational only and reported by Info.
func NewLRUSet[K comparable, V any](size int, targetRate float64) *LRUSet[K, V] {
	if size <= 0 {
		size = 1
	}
	return &LRUSet[K, V]{
		size:       size,
		targetRate: targetRate,
		order:      list.New(),
		index:      make(map[K]*list.Element, size),
	}
}

// Add interns value under key, returning the canonical value already
// present if key was seen before, else value itself. Touches key to the
// front of the LRU either way.
func (s *LRUSet[K, V]) Add(key K, value V) V {
	if el, ok := s.index[key]; ok {
		s.hits++
		s.order.MoveToFront(el)
		return el.Value.(*lruEntry[K, V]).value
	}
	s.misses++
	el := s.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	s.index[key] = el
	if s.order.Len() > s.size {
		s.evictOldest()
	}
	return value
}

func (s *LRUSet[K, V]) evictOldest() {
	oldest := s.order.Back()
	if oldest == nil {
		return
	}
	s.order.Remove(oldest)
	delete(s.index, oldest.Value.(*lruEntry[K, V]).key)
}

// Len reports the number of entries currently interned.
func (s *LRUSet[K, V]) Len() int {
	return s.order.Len()
}

// Info reports cache hit/miss counters and the configured target rate.
func (s *LRUSet[K, V]) Info() (hits, misses int64, targetRate float64) {
	return s.hits, s.misses, s.targetRate
}
