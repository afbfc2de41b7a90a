package cache

import (
	"context"
	"testing"
)

func TestDictCacheFallsThroughOnMissAndCaches(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[int, string]()
	_ = store.Set(ctx, 1, "one")

	l1 := NewDictCache[int, string](store)
	v, err := l1.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != "one" {
		t.Errorf("got %q, want %q", v, "one")
	}
	if l1.Len() != 1 {
		t.Errorf("expected the fetched value to be cached locally, got len %d", l1.Len())
	}
}

func TestDictCacheRejectsPurge(t *testing.T) {
	l1 := NewDictCache[int, string](nil)
	if err := l1.Purge(context.Background(), 1); err == nil {
		t.Error("expected DictCache.Purge to fail")
	}
}

func TestDictCacheCopybackWritesDirtyEntriesOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[int, string]()
	l1 := NewDictCache[int, string](store)
	if err := l1.Set(ctx, 1, "one"); err != nil {
		t.Fatal(err)
	}
	if err := l1.Copyback(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected copyback to write the dirty entry to store, got len %d", store.Len())
	}
	if _, err := store.Get(ctx, 1); err != nil {
		t.Errorf("expected store to contain key 1: %v", err)
	}
}

// TestCacheWriteThrough exercises the store side of spec §8 property 6:
// after copythrough, a key written dirty at L1 has an equal value in the
// store. The layers' dirty flags are not inspected here.
func TestCacheWriteThrough(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[int, string]()
	l2 := NewLRUCache[int, string](store, 10, 2)
	l1 := NewDictCache[int, string](l2)

	if err := l1.Set(ctx, 1, "one"); err != nil {
		t.Fatal(err)
	}
	if err := l1.Copythrough(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("expected key 1 to reach the store: %v", err)
	}
	if got != "one" {
		t.Errorf("got %q, want %q", got, "one")
	}
}

// TestLRUPurgeOnReadPath reproduces spec §8 scenario S6 exactly: L2
// capacity 4, purge_count 2 (reserved for an explicit batch Purge; the
// automatic purge-check on each over-capacity insertion evicts exactly
// one oldest-touched victim).
func TestLRUPurgeOnReadPath(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[int, string]()
	l2 := NewLRUCache[int, string](store, 4, 2)

	values := map[int]string{1: "v1", 2: "v2", 3: "v3", 4: "v4", 5: "v5"}
	for _, k := range []int{1, 2, 3, 4, 5} {
		if err := l2.Set(ctx, k, values[k]); err != nil {
			t.Fatal(err)
		}
	}

	assertKeys(t, "store after writes", store.data, 1, 2)
	assertKeys(t, "L2 after writes", l2.data, 3, 4, 5)

	if _, err := l2.Get(ctx, 1); err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	assertKeys(t, "store after reading 1", store.data, 1, 2)
	assertKeys(t, "L2 after reading 1", l2.data, 3, 4, 5, 1)

	if _, err := l2.Get(ctx, 2); err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	assertKeys(t, "store after reading 2", store.data, 1, 2, 3)
	assertKeys(t, "L2 after reading 2", l2.data, 4, 5, 1, 2)
}

func assertKeys[V any](t *testing.T, label string, data map[int]V, want ...int) {
	t.Helper()
	if len(data) != len(want) {
		t.Fatalf("%s: got %d keys, want %d (%v)", label, len(data), len(want), want)
	}
	for _, k := range want {
		if _, ok := data[k]; !ok {
			t.Errorf("%s: missing expected key %d", label, k)
		}
	}
}

func TestLRUFairness(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore[int, int]()
	const capacity = 4
	const n = 10
	l2 := NewLRUCache[int, int](store, capacity, 2)

	for i := 0; i < n; i++ {
		if err := l2.Set(ctx, i, i); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < n; i++ {
		if _, err := l2.Get(ctx, i); err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
	}
	if store.Len() != n {
		t.Errorf("expected every distinct key to have passed through to the store, got len %d", store.Len())
	}

	store2 := NewMemStore[int, int]()
	l2b := NewLRUCache[int, int](store2, capacity, 2)
	for i := 0; i < capacity; i++ {
		if err := l2b.Set(ctx, i, i); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < capacity; i++ {
		if _, err := l2b.Get(ctx, i); err != nil {
			t.Fatal(err)
		}
	}
	if store2.Len() != 0 {
		t.Errorf("expected reading a subset no larger than capacity to never grow the store, got len %d", store2.Len())
	}
}
