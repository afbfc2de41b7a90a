package typedef

import (
	"sync"

	"github.com/erasmus-gp/egpcore/egperr"
)

// Loader is consulted by Registry.GetByName and Registry.GetByUID when a
// type is absent from the in-memory caches; it is the abstraction over the underlying
// types table (spec §4.1: "lazily refreshed from the underlying table
// when evicted"). A Registry with a nil Loader only ever serves types
// it was seeded with.
type Loader interface {
	LoadByName(name string) (*TypesDef, error)
	LoadByUID(uid UID) (*TypesDef, error)
}

// Registry is the Type Registry (spec component A): a process-wide
// canonicalising cache of TypesDefs, keyed by both name and UID, with
// memoised ancestor/descendant closures over the parent/child DAG.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*TypesDef
	byUID  map[UID]*TypesDef
	loader Loader
	top    *TypesDef // the designated root type with no parents

	closureMu      sync.Mutex
	ancestorMemo   map[UID][]*TypesDef
	descendantMemo map[UID][]*TypesDef
	ancHits, ancMisses   int64
	descHits, descMisses int64
}

// NewRegistry returns an empty Registry. loader may be nil.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		byName:         make(map[string]*TypesDef),
		byUID:          make(map[UID]*TypesDef),
		loader:         loader,
		ancestorMemo:   make(map[UID][]*TypesDef),
		descendantMemo: make(map[UID][]*TypesDef),
	}
}

// Register adds td to the in-memory caches. It does not itself verify
// the mutual parent/child invariant across the whole DAG; call Validate
// after a batch of Register calls (e.g. after loading a seed) to check
// that invariant and acyclicity together.
func (r *Registry) Register(td *TypesDef) error {
	if td.Name() == "" {
		return egperr.New(egperr.ParseError, "cannot register a type definition with an empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[td.Name()]; ok && existing != td {
		return egperr.New(egperr.InvariantViolation, "duplicate type name").WithSubject(td.Name())
	}
	if existing, ok := r.byUID[td.UID()]; ok && existing != td {
		return egperr.New(egperr.InvariantViolation, "duplicate type uid").WithSubject(td.Name())
	}
	r.byName[td.Name()] = td
	r.byUID[td.UID()] = td
	if len(td.Parents()) == 0 {
		if r.top != nil && r.top != td {
			return egperr.New(egperr.InvariantViolation, "more than one root type (no parents)").WithSubject(td.Name())
		}
		r.top = td
	}
	return nil
}

// Top returns the designated root type (the universal top/"object" type
// with no parents), used as the element type for unused template slots.
func (r *Registry) Top() (*TypesDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return nil, egperr.New(egperr.NotFound, "no root type registered")
	}
	return r.top, nil
}

// GetByName resolves a type by name, consulting the Loader on a cache miss.
func (r *Registry) GetByName(name string) (*TypesDef, error) {
	r.mu.RLock()
	td, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		td.Touch()
		return td, nil
	}
	if r.loader == nil {
		return nil, egperr.New(egperr.NotFound, "unknown type name").WithSubject(name)
	}
	loaded, err := r.loader.LoadByName(name)
	if err != nil {
		return nil, err
	}
	if err := r.Register(loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

// GetByUID resolves a type by UID, consulting the Loader on a cache miss.
func (r *Registry) GetByUID(uid UID) (*TypesDef, error) {
	r.mu.RLock()
	td, ok := r.byUID[uid]
	r.mu.RUnlock()
	if ok {
		td.Touch()
		return td, nil
	}
	if r.loader == nil {
		return nil, egperr.New(egperr.NotFound, "unknown type uid")
	}
	loaded, err := r.loader.LoadByUID(uid)
	if err != nil {
		return nil, err
	}
	if err := r.Register(loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Validate walks the whole registered DAG checking mutuality of the
// parent/child relation and acyclicity, per spec §3.1's invariants.
// A cycle or a broken mutual reference is an InvariantViolation, fatal.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, td := range r.byName {
		for _, c := range td.Children() {
			child, ok := r.byName[c]
			if !ok {
				return egperr.New(egperr.InvariantViolation, "child type not registered").WithSubject(c)
			}
			if !containsStr(child.Parents(), name) {
				return egperr.New(egperr.InvariantViolation, "parent/child relation is not mutual").WithSubject(name + "->" + c)
			}
		}
		for _, p := range td.Parents() {
			parent, ok := r.byName[p]
			if !ok {
				return egperr.New(egperr.InvariantViolation, "parent type not registered").WithSubject(p)
			}
			if !containsStr(parent.Children(), name) {
				return egperr.New(egperr.InvariantViolation, "parent/child relation is not mutual").WithSubject(p + "->" + name)
			}
		}
	}
	for name := range r.byName {
		if err := r.checkAcyclic(name, make(map[string]bool)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) checkAcyclic(name string, onPath map[string]bool) error {
	if onPath[name] {
		return egperr.New(egperr.InvariantViolation, "cycle detected in type DAG").WithSubject(name)
	}
	onPath[name] = true
	defer delete(onPath, name)
	td := r.byName[name]
	for _, c := range td.Children() {
		if err := r.checkAcyclic(c, onPath); err != nil {
			return err
		}
	}
	return nil
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// Ancestors returns the set of all types reachable by following parent
// edges from td, memoised by UID with hit/miss counters surfaced by Info.
func (r *Registry) Ancestors(td *TypesDef) (map[string]*TypesDef, error) {
	return r.closure(td, true)
}

// Descendants returns the set of all types reachable by following child
// edges from td, memoised by UID with hit/miss counters surfaced by Info.
func (r *Registry) Descendants(td *TypesDef) (map[string]*TypesDef, error) {
	return r.closure(td, false)
}

func (r *Registry) closure(td *TypesDef, ancestors bool) (map[string]*TypesDef, error) {
	// Start from the registered instance for td's UID, as every later step
	// of the walk does, so a stale copy of td still sees current edges.
	r.mu.RLock()
	if canonical, ok := r.byUID[td.UID()]; ok {
		td = canonical
	}
	r.mu.RUnlock()
	r.closureMu.Lock()
	memo := r.descendantMemo
	if ancestors {
		memo = r.ancestorMemo
	}
	if cached, ok := memo[td.UID()]; ok {
		if ancestors {
			r.ancHits++
		} else {
			r.descHits++
		}
		r.closureMu.Unlock()
		out := make(map[string]*TypesDef, len(cached))
		for _, t := range cached {
			out[t.Name()] = t
		}
		return out, nil
	}
	if ancestors {
		r.ancMisses++
	} else {
		r.descMisses++
	}
	r.closureMu.Unlock()

	seen := make(map[string]*TypesDef)
	var walk func(cur *TypesDef, onPath map[string]bool) error
	walk = func(cur *TypesDef, onPath map[string]bool) error {
		if onPath[cur.Name()] {
			return egperr.New(egperr.InvariantViolation, "cycle detected while computing closure").WithSubject(cur.Name())
		}
		onPath[cur.Name()] = true
		defer delete(onPath, cur.Name())
		names := cur.Parents()
		if !ancestors {
			names = cur.Children()
		}
		for _, n := range names {
			next, err := r.GetByName(n)
			if err != nil {
				return err
			}
			if _, already := seen[n]; !already {
				seen[n] = next
				if err := walk(next, onPath); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(td, make(map[string]bool)); err != nil {
		return nil, err
	}

	flat := make([]*TypesDef, 0, len(seen))
	for _, t := range seen {
		flat = append(flat, t)
	}
	r.closureMu.Lock()
	memo[td.UID()] = flat
	r.closureMu.Unlock()

	out := make(map[string]*TypesDef, len(seen))
	for k, v := range seen {
		out[k] = v
	}
	return out, nil
}

// Info reports ancestor/descendant closure cache hit/miss counts, per
// spec §4.1's "memoised with hit/miss counters exposed via info()".
func (r *Registry) Info() (ancestorHits, ancestorMisses, descendantHits, descendantMisses int64) {
	r.closureMu.Lock()
	defer r.closureMu.Unlock()
	return r.ancHits, r.ancMisses, r.descHits, r.descMisses
}

// AncestorDistance returns the number of parent-edge hops from td up to
// ancestor, via a breadth-first search over Parents(), and true if
// ancestor is reachable at all. Used to break stabilisation ties by
// "shallowest ancestor" (spec §4.4 step 3): a distance of 0 means td and
// ancestor are the same type.
func (r *Registry) AncestorDistance(td, ancestor *TypesDef) (int, bool, error) {
	if td.UID() == ancestor.UID() {
		return 0, true, nil
	}
	type frontierEntry struct {
		td    *TypesDef
		depth int
	}
	visited := map[string]bool{td.Name(): true}
	queue := []frontierEntry{{td, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range cur.td.Parents() {
			if visited[p] {
				continue
			}
			visited[p] = true
			parent, err := r.GetByName(p)
			if err != nil {
				return 0, false, err
			}
			if parent.UID() == ancestor.UID() {
				return cur.depth + 1, true, nil
			}
			queue = append(queue, frontierEntry{parent, cur.depth + 1})
		}
	}
	return 0, false, nil
}

// IsAncestorOrSelf reports whether candidate is an ancestor of td or equal to
// it — the conformance rule used throughout stabilisation (spec §4.4
// step 6, §8 property 4): source.EPT ∈ ancestors(destination.EPT) ∪
// {destination.EPT}.
func (r *Registry) IsAncestorOrSelf(candidate, td *TypesDef) (bool, error) {
	if candidate.UID() == td.UID() {
		return true, nil
	}
	ancestors, err := r.Ancestors(td)
	if err != nil {
		return false, err
	}
	_, ok := ancestors[candidate.Name()]
	return ok, nil
}
