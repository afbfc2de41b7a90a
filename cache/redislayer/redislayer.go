// Package redislayer adapts a Redis client to cache.Store, letting a
// worker session extend its L1/L2 stack with a shared, out-of-process
// tier before falling through to the Gene Pool itself — useful when
// several workers on the same host want to share a hot-signature cache
// without each hitting the database.
package redislayer

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/erasmus-gp/egpcore/cache"
	"github.com/erasmus-gp/egpcore/egperr"
)

// Store adapts a *redis.Client to cache.Store[[32]byte, V], keying on a
// genetic code's 32-byte signature and msgpack-encoding values for the
// wire, mirroring the Provider/Repository split the pack's Redis
// adapter uses but replacing its JSON codec with msgpack, since nothing
// here needs to stay human-readable the way the teacher's documents do.
type Store[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store at construction.
type Option[V any] func(*Store[V])

// WithTTL sets a TTL applied to every Set. The zero value (default)
// means entries never expire, matching the Store layer's "persist
// forever" contract (spec §4.7) when Redis is used as a terminal store
// rather than a transient shared cache.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(s *Store[V]) { s.ttl = ttl }
}

// New returns a Store backed by client, namespacing keys under prefix.
func New[V any](client *redis.Client, prefix string, opts ...Option[V]) *Store[V] {
	s := &Store[V]{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[V]) fullKey(key [32]byte) string {
	return s.prefix + ":" + hex.EncodeToString(key[:])
}

// Get implements cache.Store.
func (s *Store[V]) Get(ctx context.Context, key [32]byte) (V, error) {
	var zero V
	data, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return zero, egperr.New(egperr.NotFound, "signature absent from redis layer").WithSubject(hex.EncodeToString(key[:]))
		}
		return zero, egperr.New(egperr.EncodingError, "redis get failed").WithCause(err)
	}
	var v V
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return zero, egperr.New(egperr.EncodingError, "redis value failed to decode").WithCause(err)
	}
	return v, nil
}

// Set implements cache.Store.
func (s *Store[V]) Set(ctx context.Context, key [32]byte, value V) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return egperr.New(egperr.EncodingError, "value failed to encode").WithCause(err)
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, s.ttl).Err(); err != nil {
		return egperr.New(egperr.EncodingError, "redis set failed").WithCause(err)
	}
	return nil
}

// Delete implements cache.Store.
func (s *Store[V]) Delete(ctx context.Context, key [32]byte) error {
	return s.client.Del(ctx, s.fullKey(key)).Err()
}

// Len reports the number of keys under this Store's prefix. It is O(n)
// in the keyspace and intended for diagnostics, not the hot path.
func (s *Store[V]) Len() int {
	ctx := context.Background()
	var count int
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count
}

var _ cache.Store[[32]byte, struct{}] = (*Store[struct{}])(nil)
