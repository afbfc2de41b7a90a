// Package genepool implements the Gene Pool Interface (spec component
// H): the worker-facing facade over a cache hierarchy and a persistent
// library of stable Genetic Codes.
package genepool

import (
	"context"

	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
)

// Library is the persistence contract the Gene Pool Interface sits on
// top of: the abstract schema spec §6.1 describes, independent of which
// database backs it. genepool/pgstore implements Library over Postgres;
// tests and development use an in-memory Library.
type Library interface {
	// Get loads the GC with the given signature, or NotFound.
	Get(ctx context.Context, sig genecode.Signature) (*genecode.GC, error)

	// Put persists gc, keyed by its own signature. gc must be frozen.
	Put(ctx context.Context, gc *genecode.GC) error

	// Select runs a parametric query over the library (spec §4.8:
	// "select(filter_sql, order_sql, limit, literals)"), used by the
	// physics layer to sample GCs by properties. filterSQL and orderSQL
	// are fragments applied against the abstract schema's columns
	// (spec §6.1); literals are positionally substituted.
	Select(ctx context.Context, filterSQL, orderSQL string, limit int, literals []any) ([]genecode.Signature, error)

	// SelectInterface returns the signature of a stored GC whose Od
	// interface shape matches itf exactly, or NotFound.
	SelectInterface(ctx context.Context, itf *iface.Interface) (genecode.Signature, error)

	// Len reports how many GCs the library currently holds.
	Len(ctx context.Context) (int, error)
}

// PopulationConfig parameterises InitialGenerationQuery: how to seed an
// initial population from the library rather than from scratch.
type PopulationConfig struct {
	// Size is the number of signatures requested.
	Size int
	// GraphTypeFilter lists graph types of interest (spec §6.3). It is
	// carried on the config only: InitialGenerationQuery does not read it,
	// so candidates are not restricted by graph type.
	GraphTypeFilter []genecode.Properties
	// RequireDeterministic restricts candidates to deterministic GCs.
	RequireDeterministic bool
}
