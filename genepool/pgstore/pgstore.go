// Package pgstore implements genepool.Library over Postgres via pgx,
// the concrete backend behind the Gene Pool's storage-agnostic facade.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/egplog"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/typedef"
)

// schemaDDL creates the library's single table (spec §6.1's abstract
// schema): the scalar columns needed for SQL-level selection plus a
// msgpack payload column holding the authoritative, fully reconstructible
// genecode.Record.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS genetic_codes (
	signature    BYTEA PRIMARY KEY,
	gca          BYTEA NOT NULL,
	gcb          BYTEA NOT NULL,
	ancestora    BYTEA NOT NULL,
	ancestorb    BYTEA NOT NULL,
	pgc          BYTEA NOT NULL,
	created      BIGINT NOT NULL,
	creator      BYTEA NOT NULL,
	properties   BIGINT NOT NULL,
	generation   INTEGER NOT NULL,
	input_types  BIGINT[] NOT NULL,
	output_types BIGINT[] NOT NULL,
	meta_data    BYTEA,
	payload      BYTEA NOT NULL,
	updated      TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Library is a Postgres-backed genepool.Library.
type Library struct {
	pool *pgxpool.Pool
	reg  *typedef.Registry
}

// Open connects to dsn and ensures the library's schema exists. reg
// resolves endpoint type strings when a stored GC's cgraph is
// reconstructed; it must contain every type any stored GC references.
func Open(ctx context.Context, dsn string, reg *typedef.Registry) (*Library, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, egperr.Newf(egperr.StructuralError, "connecting to gene pool database: %v", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, egperr.Newf(egperr.StructuralError, "applying gene pool schema: %v", err)
	}
	egplog.L("pgstore").Info("gene pool library ready")
	return &Library{pool: pool, reg: reg}, nil
}

// Close releases the underlying connection pool.
func (l *Library) Close() {
	l.pool.Close()
}

func sigSlice(s genecode.Signature) []byte { return s[:] }

func toSignature(b []byte) genecode.Signature {
	var s genecode.Signature
	copy(s[:], b)
	return s
}

// Get loads the GC with the given signature.
func (l *Library) Get(ctx context.Context, sig genecode.Signature) (*genecode.GC, error) {
	var payload []byte
	err := l.pool.QueryRow(ctx, `SELECT payload FROM genetic_codes WHERE signature = $1`, sigSlice(sig)).Scan(&payload)
	if err != nil {
		return nil, egperr.New(egperr.NotFound, "genetic code not found in library").WithCause(err)
	}
	var rec genecode.Record
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return nil, egperr.Newf(egperr.EncodingError, "decoding stored genetic code: %v", err)
	}
	return genecode.FromRecord(l.reg, rec)
}

// Put persists gc, keyed by its own signature. gc must be frozen.
func (l *Library) Put(ctx context.Context, gc *genecode.GC) error {
	rec, err := gc.Record()
	if err != nil {
		return err
	}
	payload, err := msgpack.Marshal(rec)
	if err != nil {
		return egperr.Newf(egperr.EncodingError, "encoding genetic code for storage: %v", err)
	}

	var inputTypes, outputTypes []int64
	var isRow, odRow = gc.CGraph().Row(cgraph.RowIs), gc.CGraph().Row(cgraph.RowOd)
	if isRow != nil {
		for _, uid := range isRow.SortedUniqueTDUIDs() {
			inputTypes = append(inputTypes, int64(uid))
		}
	}
	if odRow != nil {
		for _, uid := range odRow.SortedUniqueTDUIDs() {
			outputTypes = append(outputTypes, int64(uid))
		}
	}

	_, err = l.pool.Exec(ctx, `
		INSERT INTO genetic_codes
			(signature, gca, gcb, ancestora, ancestorb, pgc, created, creator,
			 properties, generation, input_types, output_types, meta_data, payload, updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14, now())
		ON CONFLICT (signature) DO NOTHING`,
		sigSlice(gc.Signature()), sigSlice(rec.GCA), sigSlice(rec.GCB),
		sigSlice(rec.AncestorA), sigSlice(rec.AncestorB), sigSlice(rec.PGC),
		rec.Created, gc.Creator(), rec.Properties, gc.Metrics().Generation,
		inputTypes, outputTypes, rec.MetaData, payload)
	if err != nil {
		return egperr.Newf(egperr.StructuralError, "writing genetic code to library: %v", err)
	}
	return nil
}

// Select runs a parametric query over the library, returning matching
// signatures (spec §4.8).
func (l *Library) Select(ctx context.Context, filterSQL, orderSQL string, limit int, literals []any) ([]genecode.Signature, error) {
	q := "SELECT signature FROM genetic_codes"
	if filterSQL != "" {
		q += " WHERE " + filterSQL
	}
	if orderSQL != "" {
		q += " ORDER BY " + orderSQL
	}
	args := append([]any(nil), literals...)
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := l.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, egperr.Newf(egperr.StructuralError, "selecting from library: %v", err)
	}
	defer rows.Close()

	var out []genecode.Signature
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, toSignature(b))
	}
	return out, rows.Err()
}

// SelectInterface returns the signature of a stored GC whose Od interface
// shape matches itf exactly.
func (l *Library) SelectInterface(ctx context.Context, itf *iface.Interface) (genecode.Signature, error) {
	uids, _ := itf.TypesAndIndices()
	asInt64 := make([]int64, len(uids))
	for i, u := range uids {
		asInt64[i] = int64(u)
	}
	var b []byte
	err := l.pool.QueryRow(ctx,
		`SELECT signature FROM genetic_codes WHERE output_types = $1 LIMIT 1`, asInt64).Scan(&b)
	if err != nil {
		return genecode.Signature{}, egperr.New(egperr.NotFound, "no genetic code with that interface").WithCause(err)
	}
	return toSignature(b), nil
}

// Len reports how many GCs the library currently holds.
func (l *Library) Len(ctx context.Context) (int, error) {
	var n int
	if err := l.pool.QueryRow(ctx, `SELECT count(*) FROM genetic_codes`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ interface {
	Get(context.Context, genecode.Signature) (*genecode.GC, error)
	Put(context.Context, *genecode.GC) error
	Select(context.Context, string, string, int, []any) ([]genecode.Signature, error)
	SelectInterface(context.Context, *iface.Interface) (genecode.Signature, error)
	Len(context.Context) (int, error)
} = (*Library)(nil)
