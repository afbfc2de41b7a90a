// Package mongostore implements genepool.Library over MongoDB, an
// alternate concrete backend to genepool/pgstore for a deployment that
// already runs a document store rather than Postgres.
package mongostore

import (
	"context"

	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/typedef"
)

// doc is the document shape each genetic code is stored as: the
// signature as the Mongo document's own _id (so Put is naturally
// idempotent on re-insertion of the same content-addressed GC), a
// handful of queryable scalar fields mirroring spec §6.1's abstract
// schema, and the msgpack-encoded genecode.Record as the authoritative
// payload Get reconstructs from.
type doc struct {
	ID          []byte `bson:"_id"`
	GCA         []byte `bson:"gca"`
	GCB         []byte `bson:"gcb"`
	AncestorA   []byte `bson:"ancestora"`
	AncestorB   []byte `bson:"ancestorb"`
	PGC         []byte `bson:"pgc"`
	Created     int64  `bson:"created"`
	Properties  uint64 `bson:"properties"`
	Generation  int32  `bson:"generation"`
	InputTypes  []int64 `bson:"input_types"`
	OutputTypes []int64 `bson:"output_types"`
	Payload     []byte `bson:"payload"`
}

// Library is a genepool.Library backed by a single MongoDB collection.
type Library struct {
	collection *mongo.Collection
	reg        *typedef.Registry
}

// Open returns a Library using collection, first creating an index on
// output_types for SelectInterface lookups.
func Open(ctx context.Context, collection *mongo.Collection, reg *typedef.Registry) (*Library, error) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "output_types", Value: 1}},
	})
	if err != nil {
		return nil, egperr.New(egperr.StructuralError, "creating output_types index").WithCause(err)
	}
	return &Library{collection: collection, reg: reg}, nil
}

func sigSlice(s genecode.Signature) []byte { return append([]byte(nil), s[:]...) }

func toSignature(b []byte) genecode.Signature {
	var sig genecode.Signature
	copy(sig[:], b)
	return sig
}

func tduidsToInt64(uids []typedef.UID) []int64 {
	out := make([]int64, len(uids))
	for i, u := range uids {
		out[i] = int64(u)
	}
	return out
}

// Get loads the GC with the given signature, or NotFound.
func (l *Library) Get(ctx context.Context, sig genecode.Signature) (*genecode.GC, error) {
	var d doc
	err := l.collection.FindOne(ctx, bson.M{"_id": sigSlice(sig)}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, egperr.New(egperr.NotFound, "genetic code not found in library").WithSubject(sig.String())
	}
	if err != nil {
		return nil, egperr.New(egperr.StructuralError, "loading genetic code").WithCause(err)
	}
	var rec genecode.Record
	if err := msgpack.Unmarshal(d.Payload, &rec); err != nil {
		return nil, egperr.New(egperr.EncodingError, "decoding stored genetic code payload").WithCause(err)
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
		return egperr.New(egperr.EncodingError, "encoding genetic code payload").WithCause(err)
	}

	is, od := gc.CGraph().Row(cgraph.RowIs), gc.CGraph().Row(cgraph.RowOd)
	var inputTypes, outputTypes []typedef.UID
	if is != nil {
		inputTypes = is.SortedUniqueTDUIDs()
	}
	if od != nil {
		outputTypes = od.SortedUniqueTDUIDs()
	}

	d := doc{
		ID:          sigSlice(rec.Signature),
		GCA:         sigSlice(rec.GCA),
		GCB:         sigSlice(rec.GCB),
		AncestorA:   sigSlice(rec.AncestorA),
		AncestorB:   sigSlice(rec.AncestorB),
		PGC:         sigSlice(rec.PGC),
		Created:     rec.Created,
		Properties:  rec.Properties,
		Generation:  gc.Metrics().Generation,
		InputTypes:  tduidsToInt64(inputTypes),
		OutputTypes: tduidsToInt64(outputTypes),
		Payload:     payload,
	}
	upsert := true
	_, err = l.collection.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, &options.ReplaceOptions{Upsert: &upsert})
	if err != nil {
		return egperr.New(egperr.StructuralError, "storing genetic code").WithCause(err)
	}
	return nil
}

// Select runs a best-effort translation of a Postgres-shaped filter
// fragment against the collection's scalar fields. Only the properties
// bitmask clauses translateFilter recognises, joined by AND, are
// supported; any other clause is rejected. Anything richer should drive
// a genepool/pgstore-backed deployment instead,
// since Mongo has no native SQL dialect to delegate to (spec's
// Non-goals exclude a SQL dialect/DDL generator, so no general
// translator is attempted here).
func (l *Library) Select(ctx context.Context, filterSQL, orderSQL string, limit int, literals []any) ([]genecode.Signature, error) {
	filter, err := translateFilter(filterSQL, literals)
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if sortField, desc := translateOrder(orderSQL); sortField != "" {
		dir := 1
		if desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: sortField, Value: dir}})
	}
	cur, err := l.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, egperr.New(egperr.StructuralError, "querying library").WithCause(err)
	}
	defer cur.Close(ctx)

	var out []genecode.Signature
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, egperr.New(egperr.EncodingError, "decoding query result").WithCause(err)
		}
		out = append(out, toSignature(d.ID))
	}
	return out, cur.Err()
}

// SelectInterface returns the signature of a stored GC whose Od
// interface shape matches itf exactly, or NotFound.
func (l *Library) SelectInterface(ctx context.Context, itf *iface.Interface) (genecode.Signature, error) {
	wanted := tduidsToInt64(itf.SortedUniqueTDUIDs())
	var d doc
	err := l.collection.FindOne(ctx, bson.M{"output_types": wanted}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return genecode.Signature{}, egperr.New(egperr.NotFound, "no genetic code with that interface")
	}
	if err != nil {
		return genecode.Signature{}, egperr.New(egperr.StructuralError, "querying library by interface").WithCause(err)
	}
	return toSignature(d.ID), nil
}

// Len reports how many GCs the library currently holds.
func (l *Library) Len(ctx context.Context) (int, error) {
	n, err := l.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, egperr.New(egperr.StructuralError, "counting library").WithCause(err)
	}
	return int(n), nil
}
