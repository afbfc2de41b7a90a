package cacheable

import "testing"

func TestBaseTouchAdvancesSeqNumMonotonically(t *testing.T) {
	var b Base
	first := b.SeqNum()
	b.Touch()
	second := b.SeqNum()
	if second <= first {
		t.Fatalf("expected seq num to increase, got %d then %d", first, second)
	}
}

func TestBaseMarkDirtyTouchesAndFlags(t *testing.T) {
	var b Base
	if b.IsDirty() {
		t.Fatal("expected new Base to be clean")
	}
	before := b.SeqNum()
	b.MarkDirty()
	if !b.IsDirty() {
		t.Fatal("expected MarkDirty to flag dirty")
	}
	if b.SeqNum() <= before {
		t.Fatal("expected MarkDirty to touch the sequence number")
	}
	b.MarkClean()
	if b.IsDirty() {
		t.Fatal("expected MarkClean to clear dirty")
	}
}

func TestFreezeStateLatchesOnce(t *testing.T) {
	var f FreezeState
	if f.IsFrozen() {
		t.Fatal("expected new FreezeState to be unfrozen")
	}
	f.Freeze()
	if !f.IsFrozen() {
		t.Fatal("expected Freeze to latch frozen")
	}
	f.Freeze() // idempotent
	if !f.IsFrozen() {
		t.Fatal("expected repeated Freeze calls to remain frozen")
	}
}

func TestSequenceNumbersAreGloballyMonotonic(t *testing.T) {
	var a, b Base
	a.Touch()
	b.Touch()
	if b.SeqNum() <= a.SeqNum() {
		t.Fatal("expected the shared sequence source to order touches across distinct objects")
	}
}
