// Package cacheable provides the mixin every cacheable core object
// embeds: a dirty flag, a monotonic sequence number used by the LRU
// cache hierarchy, and a freeze latch for objects that become immutable
// once stabilised or interned.
//
// Go has no base-class inheritance, so the mixin is a struct embedded
// by value in each concrete type (EPT, Interface, CGraph, GeneticCode),
// giving every embedder the Cacheable and Freezable method sets for
// free. Concrete types add their own Verify/Consistency checks and call
// embedded Base/FreezeState methods where the spec asks for a base-class
// call "at the end" of the derived check.
package cacheable

import (
	"math"
	"sync/atomic"
)

// seqSource is the process-wide monotonic counter backing SeqNum,
// starting at the minimum int64 to give the longest possible LRU history
// before wraparound.
var seqSource int64 = math.MinInt64

// nextSeq returns the next value of the global sequence counter.
func nextSeq() int64 {
	return atomic.AddInt64(&seqSource, 1)
}

// Cacheable is the contract every cacheable object exposes.
type Cacheable interface {
	IsDirty() bool
	MarkDirty()
	MarkClean()
	SeqNum() int64
	Touch()
}

// Base implements Cacheable by value embedding. Both the auto-dirty and
// manual-dirty variants described by the spec use this same mixin; the
// distinction is entirely in whether the embedding type's write methods
// call MarkDirty() for the caller (auto-dirty, e.g. a collection's
// Set/Append) or leave it to the owner to call Dirty explicitly after a
// batch of edits (manual-dirty).
type Base struct {
	dirty int32
	// seq is stored as an offset from math.MinInt64, so a zero-valued
	// (never touched) Base reports the oldest possible sequence number.
	seq int64
}

// IsDirty reports whether the object has unwritten changes.
func (b *Base) IsDirty() bool {
	return atomic.LoadInt32(&b.dirty) != 0
}

// MarkDirty flags the object dirty and bumps its sequence number.
func (b *Base) MarkDirty() {
	atomic.StoreInt32(&b.dirty, 1)
	b.Touch()
}

// MarkClean clears the dirty flag, typically after a successful writeback.
func (b *Base) MarkClean() {
	atomic.StoreInt32(&b.dirty, 0)
}

// SeqNum returns the object's current LRU sequence number.
func (b *Base) SeqNum() int64 {
	return atomic.LoadInt64(&b.seq) + math.MinInt64
}

// Touch advances the object's sequence number without changing its
// dirty state, recording a fresh access for the LRU.
func (b *Base) Touch() {
	atomic.StoreInt64(&b.seq, nextSeq()-math.MinInt64)
}

// Freezable is implemented by objects that are mutable until explicitly
// frozen, after which mutating operations must fail.
type Freezable interface {
	Freeze()
	IsFrozen() bool
}

// FreezeState implements Freezable by value embedding.
type FreezeState struct {
	frozen int32
}

// Freeze latches the object as immutable. Freezing twice is a no-op.
func (f *FreezeState) Freeze() {
	atomic.StoreInt32(&f.frozen, 1)
}

// IsFrozen reports whether Freeze has been called.
func (f *FreezeState) IsFrozen() bool {
	return atomic.LoadInt32(&f.frozen) != 0
}

// Verifiable is implemented by objects exposing the two-tier self-check
// contract: Verify is a fast structural check, Consistency is a slower
// semantic one. By convention a derived Consistency implementation
// calls the base Verify (or its own Verify) first, since a
// consistency check assumes the data it operates on is individually
// valid.
type Verifiable interface {
	Verify() error
	Consistency() error
}
