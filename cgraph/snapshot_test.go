package cgraph

import (
	"testing"
	"time"
)

func TestSnapshotRoundTripsAStableGraph(t *testing.T) {
	g, reg, _ := buildStandardGraph(t, time.Unix(1577836800, 0))
	if err := g.Stabilize(reg); err != nil {
		t.Fatalf("Stabilize: %v", err)
	}

	snap, err := g.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	rebuilt, err := FromSnapshot(reg, snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	if rebuilt.GraphType() != g.GraphType() {
		t.Errorf("graph type mismatch: got %v, want %v", rebuilt.GraphType(), g.GraphType())
	}
	if !rebuilt.IsStable() {
		t.Error("expected the rebuilt graph to report stable")
	}

	wantJSON, err := g.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	gotJSON, err := rebuilt.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("canonical JSON differs after round trip:\ngot:  %s\nwant: %s", gotJSON, wantJSON)
	}

	wantHash, err := g.Hash()
	if err != nil {
		t.Fatal(err)
	}
	gotHash, err := rebuilt.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if gotHash != wantHash {
		t.Error("expected the rebuilt graph's content hash to match the original's")
	}
}

func TestSnapshotRejectsUnfrozenGraph(t *testing.T) {
	g, _, _ := buildStandardGraph(t, time.Unix(1577836800, 0))
	if _, err := g.Snapshot(); err == nil {
		t.Error("expected Snapshot to reject a graph that has not been frozen")
	}
}
