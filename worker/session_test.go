package worker

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egpconfig"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/seed"
	"github.com/erasmus-gp/egpcore/typedef"
)

// memLibrary is a trivial in-memory genepool.Library, used the same way
// the teacher's tests stand a repository-consuming type up against an
// in-memory fake rather than a real database.
type memLibrary struct {
	mu   sync.Mutex
	data map[genecode.Signature]*genecode.GC
}

func newMemLibrary() *memLibrary {
	return &memLibrary{data: make(map[genecode.Signature]*genecode.GC)}
}

func (l *memLibrary) Get(_ context.Context, sig genecode.Signature) (*genecode.GC, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	gc, ok := l.data[sig]
	if !ok {
		return nil, egperr.New(egperr.NotFound, "genetic code not found in library")
	}
	return gc, nil
}

func (l *memLibrary) Put(_ context.Context, gc *genecode.GC) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[gc.Signature()] = gc
	return nil
}

func (l *memLibrary) Select(_ context.Context, _ string, _ string, limit int, _ []any) ([]genecode.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]genecode.Signature, 0, len(l.data))
	for sig := range l.data {
		out = append(out, sig)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (l *memLibrary) SelectInterface(_ context.Context, itf *iface.Interface) (genecode.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for sig, gc := range l.data {
		od := gc.CGraph().Row(cgraph.RowOd)
		if od != nil && od.Hash() == itf.Hash() {
			return sig, nil
		}
	}
	return genecode.Signature{}, egperr.New(egperr.NotFound, "no genetic code with that interface")
}

func (l *memLibrary) Len(context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.data), nil
}

func buildRegistryAndCodon(t *testing.T) (*typedef.Registry, *genecode.GC, []byte) {
	t.Helper()
	reg := typedef.NewRegistry(nil)
	pack := func(f typedef.Fields) typedef.UID {
		u, err := typedef.Pack(f)
		if err != nil {
			t.Fatal(err)
		}
		return u
	}
	object, err := typedef.New("object", pack(typedef.Fields{XUID: 0}), nil, nil, nil, []string{"bool"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(object); err != nil {
		t.Fatal(err)
	}
	boolTD, err := typedef.New("bool", pack(typedef.Fields{XUID: 1}), nil, nil, []string{"object"}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(boolTD); err != nil {
		t.Fatal(err)
	}
	typesJSON, err := reg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	e, err := ept.New([]*typedef.TypesDef{boolTD})
	if err != nil {
		t.Fatal(err)
	}
	g := cgraph.New(cgraph.Primitive, time.Unix(1577836800, 0))
	isIface, err := iface.New("Is", iface.Src, []iface.Endpoint{{Row: "Is", Idx: 0, Class: iface.Src, Typ: e}})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetRow(cgraph.RowIs, isIface); err != nil {
		t.Fatal(err)
	}
	odIface, err := iface.New("Od", iface.Dst, []iface.Endpoint{{Row: "Od", Idx: 0, Class: iface.Dst, Typ: e}})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetRow(cgraph.RowOd, odIface); err != nil {
		t.Fatal(err)
	}
	if err := g.Stabilize(reg); err != nil {
		t.Fatal(err)
	}
	props := genecode.Properties{GCType: genecode.Codon, GraphType: cgraph.Primitive, Deterministic: true}
	gc, err := genecode.New(g, genecode.References{}, uuid.New(), props, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := gc.Freeze(); err != nil {
		t.Fatal(err)
	}
	return reg, gc, typesJSON
}

func TestNewSessionWiresGenePoolAndStores(t *testing.T) {
	lib := newMemLibrary()
	cfg := egpconfig.New()
	s := NewSession(cfg, nil, lib)

	_, gc, _ := buildRegistryAndCodon(t)
	ctx := context.Background()
	if err := s.GenePool.Set(ctx, gc); err != nil {
		t.Fatal(err)
	}
	got, err := s.GenePool.Get(ctx, gc.Signature())
	if err != nil {
		t.Fatal(err)
	}
	if got.Signature() != gc.Signature() {
		t.Error("expected Session's Gene Pool to round-trip through its own cache stack")
	}

	if _, err := s.EPTStore.AddUIDs(nil); err == nil {
		t.Error("expected an empty EPT to be rejected")
	}
	if s.IfaceStore == nil {
		t.Fatal("expected NewSession to wire an Interface Store")
	}
}

func TestSessionBootstrapIsANoOpWithoutSeedConfig(t *testing.T) {
	lib := newMemLibrary()
	cfg := egpconfig.New()
	s := NewSession(cfg, nil, lib)

	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("expected Bootstrap with no Seed config to be a no-op, got %v", err)
	}
	n, err := lib.Len(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected an empty library to remain empty, got %d entries", n)
	}
}

func TestSessionBootstrapLoadsSignedSeed(t *testing.T) {
	_, gc, typesJSON := buildRegistryAndCodon(t)
	rec, err := gc.Record()
	if err != nil {
		t.Fatal(err)
	}
	bundle := seed.Bundle{Types: json.RawMessage(typesJSON), Codons: []genecode.Record{rec}}
	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	sigPath := filepath.Join(dir, "seed.sig")
	if err := os.WriteFile(sigPath, ed25519.Sign(priv, data), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := newMemLibrary()
	cfg := egpconfig.New()
	cfg.Seed = egpconfig.SeedConfig{JSONPath: jsonPath, SignaturePath: sigPath, PublicKey: pub}
	s := NewSession(cfg, nil, lib)

	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatal(err)
	}
	n, err := lib.Len(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected Bootstrap to seed one codon, got %d", n)
	}
	if _, err := s.Registry.GetByName("bool"); err != nil {
		t.Errorf("expected Bootstrap to register the seed's types on the session's own registry: %v", err)
	}
}

func TestSessionCloseReleasesStores(t *testing.T) {
	lib := newMemLibrary()
	cfg := egpconfig.New()
	s := NewSession(cfg, nil, lib)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
