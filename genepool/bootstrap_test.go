package genepool

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egpconfig"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/seed"
	"github.com/erasmus-gp/egpcore/typedef"
)

func TestBootstrapLoadsTypesAndCodons(t *testing.T) {
	reg := typedef.NewRegistry(nil)
	object, err := typedef.New("object", mustPack(t, typedef.Fields{XUID: 0}), nil, nil, nil, []string{"bool"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(object); err != nil {
		t.Fatal(err)
	}
	boolTD, err := typedef.New("bool", mustPack(t, typedef.Fields{XUID: 1}), nil, nil, []string{"object"}, nil, false)
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
	created := time.Unix(1577836800, 0)
	g := cgraph.New(cgraph.Primitive, created)
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

	freshReg := typedef.NewRegistry(nil)
	lib := newFakeLibrary()
	l1Cfg, l2Cfg := testCacheConfig()
	gp := New(lib, l1Cfg, l2Cfg)

	cfg := egpconfig.SeedConfig{JSONPath: jsonPath, SignaturePath: sigPath, PublicKey: pub}
	ctx := context.Background()
	if err := gp.Bootstrap(ctx, freshReg, cfg); err != nil {
		t.Fatal(err)
	}

	n, err := lib.Len(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected Bootstrap to seed one codon, got %d", n)
	}
	if _, err := freshReg.GetByName("bool"); err != nil {
		t.Errorf("expected Bootstrap to register the seed's types: %v", err)
	}
}
