package genecode

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/erasmus-gp/egpcore/egperr"
)

// compressMetaData implements the library schema's compress_json column
// conversion (spec §6.1) for the meta_data field: zlib-compressed JSON.
// A nil blob compresses to nil, matching the column's nullability.
func compressMetaData(raw []byte) ([]byte, error) {
	if raw == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, egperr.New(egperr.EncodingError, "meta_data compression failed").WithCause(err)
	}
	if err := w.Close(); err != nil {
		return nil, egperr.New(egperr.EncodingError, "meta_data compression failed").WithCause(err)
	}
	return buf.Bytes(), nil
}

// decompressMetaData is compress_json's inverse, decode_json: it must
// satisfy encode-then-decode identity for every valid blob (spec §6.1).
func decompressMetaData(compressed []byte) ([]byte, error) {
	if compressed == nil {
		return nil, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, egperr.New(egperr.EncodingError, "meta_data decompression failed").WithCause(err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, egperr.New(egperr.EncodingError, "meta_data decompression failed").WithCause(err)
	}
	return raw, nil
}

// SetMetaDataJSON marshals v as JSON and stores it as g's meta_data blob
// (uncompressed in memory; compression happens only at the persistence
// boundary, in compressMetaData). Fails if g is frozen.
func (g *GC) SetMetaDataJSON(v any) error {
	if g.IsFrozen() {
		return egperr.New(egperr.StructuralError, "cannot set meta_data on a frozen genetic code")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return egperr.New(egperr.EncodingError, "meta_data failed to marshal as JSON").WithCause(err)
	}
	g.metaData = raw
	g.MarkDirty()
	return nil
}

// MetaDataJSON unmarshals g's meta_data blob into v.
func (g *GC) MetaDataJSON(v any) error {
	if g.metaData == nil {
		return egperr.New(egperr.NotFound, "genetic code has no meta_data")
	}
	if err := json.Unmarshal(g.metaData, v); err != nil {
		return egperr.New(egperr.EncodingError, "meta_data failed to unmarshal").WithCause(err)
	}
	return nil
}
