// Package worker provides the top-level facade a worker process
// constructs once at startup: a Session composing the Type Registry,
// Endpoint-Type and Interface Stores, their Deduplicators, and the Gene
// Pool Interface behind the worker's own cache hierarchy. Nothing here
// is a new algorithm; it is wiring, grounded on the teacher's
// gpa.ProviderRegistry/DatabaseManager pattern of a single composition
// object a process builds once and passes down.
package worker

import (
	"context"

	"github.com/erasmus-gp/egpcore/egpconfig"
	"github.com/erasmus-gp/egpcore/egperr"
	"github.com/erasmus-gp/egpcore/egplog"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/genepool"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/typedef"
)

// Session is the object a worker process builds once at startup and
// shares across every goroutine it spawns: one Type Registry, one EPT
// Store, one Interface Store, and one Gene Pool Interface, all backed
// by the types table / library a Loader and Library implementation
// expose to this process.
type Session struct {
	Registry   *typedef.Registry
	EPTStore   *ept.Store
	IfaceStore *iface.Store
	GenePool   *genepool.Interface

	cfg egpconfig.SessionConfig
}

// NewSession wires a Session from cfg, a type Loader (may be nil, in
// which case the Registry only ever serves types it is explicitly
// seeded with), and a genepool.Library backing the terminal store of
// the Gene Pool's cache hierarchy.
func NewSession(cfg egpconfig.SessionConfig, loader typedef.Loader, lib genepool.Library) *Session {
	reg := typedef.NewRegistry(loader)
	return &Session{
		Registry:   reg,
		EPTStore:   ept.NewStore(reg),
		IfaceStore: iface.NewStore(),
		GenePool:   genepool.New(lib, cfg.L1, cfg.L2),
		cfg:        cfg,
	}
}

// Bootstrap loads the Session's configured signed seed bundle, if one
// is set, registering its types in the Registry and seeding the Gene
// Pool's library when it is empty (spec §6.6). A Session whose
// egpconfig.SeedConfig is the zero value skips bootstrapping entirely,
// for workers that join an already-populated deployment.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.cfg.Seed.JSONPath == "" {
		return nil
	}
	egplog.L("worker").V(egplog.Debug).Info("bootstrapping session from seed", "path", s.cfg.Seed.JSONPath)
	return s.GenePool.Bootstrap(ctx, s.Registry, s.cfg.Seed)
}

// Copythrough flushes every dirty cache entry in the Gene Pool's
// hierarchy down to the library, for an orderly shutdown.
func (s *Session) Copythrough(ctx context.Context) error {
	return s.GenePool.Copythrough(ctx)
}

// Close evicts the interned EPTs and Interfaces whose reference count
// has dropped to zero; entries still referenced stay interned. It does
// not close the underlying Library; callers that own the Library's
// connection (e.g. a *pgstore.Library) are responsible for closing it
// themselves once every Session sharing it has stopped.
func (s *Session) Close() error {
	if s.EPTStore == nil || s.IfaceStore == nil {
		return egperr.New(egperr.StructuralError, "session is not initialised")
	}
	s.EPTStore.Scavenge(0)
	s.IfaceStore.Scavenge(0)
	return nil
}
