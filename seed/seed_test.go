package seed

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/erasmus-gp/egpcore/genecode"
)

func writeSignedBundle(t *testing.T, dir string, bundle Bundle, priv ed25519.PrivateKey) (jsonPath, sigPath string) {
	t.Helper()
	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}
	jsonPath = filepath.Join(dir, "seed.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	sig := ed25519.Sign(priv, data)
	sigPath = filepath.Join(dir, "seed.sig")
	if err := os.WriteFile(sigPath, sig, 0o644); err != nil {
		t.Fatal(err)
	}
	return jsonPath, sigPath
}

func TestLoadSignedAcceptsAValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	bundle := Bundle{
		Types: json.RawMessage(`{"object":{"xuid":0}}`),
		Codons: []genecode.Record{
			{Creator: uuid.New(), Properties: 1},
		},
	}
	dir := t.TempDir()
	jsonPath, sigPath := writeSignedBundle(t, dir, bundle, priv)

	got, err := LoadSigned(jsonPath, sigPath, pub)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Codons) != 1 {
		t.Errorf("expected 1 codon record, got %d", len(got.Codons))
	}
}

func TestLoadSignedRejectsTamperedDocument(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	bundle := Bundle{Types: json.RawMessage(`{}`)}
	dir := t.TempDir()
	jsonPath, sigPath := writeSignedBundle(t, dir, bundle, priv)

	tampered := []byte(`{"types":{"extra":"field"},"codons":[]}`)
	if err := os.WriteFile(jsonPath, tampered, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSigned(jsonPath, sigPath, pub); err == nil {
		t.Error("expected a tampered seed document to fail signature verification")
	}
}

func TestLoadSignedRejectsWrongKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	otherPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	bundle := Bundle{Types: json.RawMessage(`{}`)}
	dir := t.TempDir()
	jsonPath, sigPath := writeSignedBundle(t, dir, bundle, priv)

	if _, err := LoadSigned(jsonPath, sigPath, otherPub); err == nil {
		t.Error("expected verification against the wrong public key to fail")
	}
}
