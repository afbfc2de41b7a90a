// Package typedef implements the Type Registry (spec component A): a
// content-addressed lattice of type definitions with template types,
// parent/child relations, and the deterministic UID scheme used to key
// interfaces throughout the core.
package typedef

import (
	"unicode"

	"github.com/erasmus-gp/egpcore/cacheable"
	"github.com/erasmus-gp/egpcore/egperr"
)

// ImportDef names one symbol a type definition's default/EPT rendering
// needs imported, e.g. `from (aip) import name as asName`.
type ImportDef struct {
	AIP    []string // absolute import path, e.g. ["collections", "abc"]
	Name   string
	AsName string
}

func (d ImportDef) String() string {
	s := "from " + joinDots(d.AIP) + " import " + d.Name
	if d.AsName != "" {
		s += " as " + d.AsName
	}
	return s
}

func joinDots(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func validImportDef(d ImportDef) error {
	if len(d.AIP) == 0 {
		return egperr.New(egperr.ParseError, "import definition aip must have at least one element")
	}
	if err := validName("name", d.Name, 1, 64); err != nil {
		return err
	}
	if d.AsName != "" {
		if err := validName("as_name", d.AsName, 0, 64); err != nil {
			return err
		}
	}
	return nil
}

// TypesDef is a single globally unique type definition record (spec §3.1).
type TypesDef struct {
	cacheable.Base
	cacheable.FreezeState

	uid     UID
	name    string
	dflt    *string
	imports []ImportDef

	// parents/children are type names, forming a DAG; mutuality
	// (B in A.children iff A in B.parents) is checked by
	// Registry.Validate, not by TypesDef itself or by Registry.Register.
	parents  []string
	children []string

	abstract bool
}

// New constructs a TypesDef, validating every field per spec §3.1's
// invariants except the mutual parent/child relation, which
// Registry.Validate checks across the registered DAG (a single TypesDef
// cannot see its siblings).
func New(name string, uid UID, dflt *string, imports []ImportDef, parents, children []string, abstract bool) (*TypesDef, error) {
	if err := validName("name", name, 1, 64); err != nil {
		return nil, err
	}
	if dflt != nil {
		if err := validName("default", *dflt, 1, 128); err != nil {
			return nil, err
		}
	}
	for _, imp := range imports {
		if err := validImportDef(imp); err != nil {
			return nil, err
		}
	}
	for _, p := range parents {
		if err := validName("parents", p, 1, 64); err != nil {
			return nil, err
		}
	}
	for _, c := range children {
		if err := validName("children", c, 1, 64); err != nil {
			return nil, err
		}
	}
	td := &TypesDef{
		uid:      uid,
		name:     name,
		dflt:     dflt,
		imports:  append([]ImportDef(nil), imports...),
		parents:  append([]string(nil), parents...),
		children: append([]string(nil), children...),
		abstract: abstract,
	}
	return td, nil
}

// UID returns the type's packed unique identifier.
func (t *TypesDef) UID() UID { return t.uid }

// Name returns the type's unique name.
func (t *TypesDef) Name() string { return t.name }

// Default returns the optional default-instantiation literal.
func (t *TypesDef) Default() (string, bool) {
	if t.dflt == nil {
		return "", false
	}
	return *t.dflt, true
}

// Imports returns the ordered import descriptors for this type.
func (t *TypesDef) Imports() []ImportDef {
	return append([]ImportDef(nil), t.imports...)
}

// Parents returns the direct parent type names.
func (t *TypesDef) Parents() []string {
	return append([]string(nil), t.parents...)
}

// Children returns the direct child type names.
func (t *TypesDef) Children() []string {
	return append([]string(nil), t.children...)
}

// Abstract reports whether at least one concrete subtype is required to
// instantiate this type.
func (t *TypesDef) Abstract() bool { return t.abstract }

// TT returns the template arity encoded in the type's UID.
func (t *TypesDef) TT() uint8 { return t.uid.TT() }

// DedupKey implements dedup.Keyed, keying by UID.
func (t *TypesDef) DedupKey() UID { return t.uid }

// JSON is the canonical on-wire shape of a TypesDef (spec §3.1's
// JSON seed format).
type JSON struct {
	Name     string      `json:"name"`
	UID      int32       `json:"uid"`
	Default  *string     `json:"default,omitempty"`
	Imports  []ImportDef `json:"imports,omitempty"`
	Parents  []string    `json:"parents,omitempty"`
	Children []string    `json:"children,omitempty"`
	Abstract bool        `json:"abstract,omitempty"`
}

// ToJSON returns the canonical JSON-serialisable form of t.
func (t *TypesDef) ToJSON() JSON {
	return JSON{
		Name:     t.name,
		UID:      int32(t.uid),
		Default:  t.dflt,
		Imports:  t.Imports(),
		Parents:  t.Parents(),
		Children: t.Children(),
		Abstract: t.abstract,
	}
}

// FromJSON reconstructs a TypesDef from its canonical JSON form.
func FromJSON(j JSON) (*TypesDef, error) {
	return New(j.Name, UID(j.UID), j.Default, j.Imports, j.Parents, j.Children, j.Abstract)
}

// Verify performs the fast structural checks spec §3.6 requires.
func (t *TypesDef) Verify() error {
	if err := validName("name", t.name, 1, 64); err != nil {
		return err
	}
	if t.uid.TT() > maxTT {
		return egperr.New(egperr.InvariantViolation, "TT exceeds maximum template arity")
	}
	return nil
}

// Consistency runs the same checks as Verify; no further semantic check
// is made on a TypesDef alone.
func (t *TypesDef) Consistency() error {
	return t.Verify()
}

func validName(field, s string, minLen, maxLen int) error {
	if len(s) < minLen || len(s) > maxLen {
		return egperr.Newf(egperr.ParseError, "%s length %d out of range [%d,%d]", field, len(s), minLen, maxLen)
	}
	for _, r := range s {
		if !unicode.IsPrint(r) || r > unicode.MaxASCII {
			return egperr.Newf(egperr.ParseError, "%s contains non-printable-ASCII rune %q", field, r)
		}
	}
	return nil
}
