package typedef

import (
	"hash/fnv"
	"strings"

	"github.com/erasmus-gp/egpcore/egperr"
)

// Expand resolves a template type string such as "list[int]" or
// "dict[str, list[int]]" to its TypesDef, synthesising the compound
// definition on demand if it is not already registered (spec §4.1:
// "the registry parses the bracket structure, resolves each leaf to a
// base type, and synthesises the compound TypesDef").
//
// The synthesised type's name is the canonicalised template string and
// its UID is derived deterministically from (base.UID(), child.UID()...)
// so that two calls to Expand with the same template string (in any
// registry sharing the same base types) produce identical UIDs.
func (r *Registry) Expand(template string) (*TypesDef, error) {
	name, err := canonicalizeTemplateName(template)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	if existing, ok := r.byName[name]; ok {
		r.mu.RUnlock()
		existing.Touch()
		return existing, nil
	}
	r.mu.RUnlock()

	base, args, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}
	baseTD, err := r.GetByName(base)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return baseTD, nil
	}
	childTDs := make([]*TypesDef, 0, len(args))
	childUIDs := make([]UID, 0, len(args))
	for _, a := range args {
		childTD, err := r.Expand(a)
		if err != nil {
			return nil, err
		}
		childTDs = append(childTDs, childTD)
		childUIDs = append(childUIDs, childTD.UID())
	}
	if baseTD.TT() != 0 && int(baseTD.TT()) != len(args) {
		return nil, egperr.Newf(egperr.StructuralError,
			"template %q supplies %d type arguments, base %q expects %d", template, len(args), base, baseTD.TT())
	}
	xuid := deriveXUID(baseTD.UID(), childUIDs)
	uid, err := Pack(Fields{TT: uint8(len(args)), XUID: xuid})
	if err != nil {
		return nil, err
	}
	synthesized, err := New(name, uid, nil, nil, []string{base}, nil, baseTD.Abstract())
	if err != nil {
		return nil, err
	}
	if err := r.Register(synthesized); err != nil {
		// A racing Expand call may have registered it first; fall back
		// to whatever is now canonical for this name.
		if existing, getErr := r.GetByName(name); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return synthesized, nil
}

// deriveXUID deterministically folds a base UID and ordered child UIDs
// into a 16-bit within-TT extension id.
func deriveXUID(base UID, children []UID) uint16 {
	h := fnv.New32a()
	writeInt32(h, int32(base))
	for _, c := range children {
		writeInt32(h, int32(c))
	}
	return uint16(h.Sum32() & maxXUID)
}

func writeInt32(h interface{ Write([]byte) (int, error) }, v int32) {
	b := [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	_, _ = h.Write(b[:])
}

// canonicalizeTemplateName normalises whitespace in a template string so
// that "dict[str,list[int]]" and "dict[str, list[int]]" resolve to the
// same canonical name.
func canonicalizeTemplateName(template string) (string, error) {
	base, args, err := parseTemplate(template)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return base, nil
	}
	canonArgs := make([]string, len(args))
	for i, a := range args {
		c, err := canonicalizeTemplateName(a)
		if err != nil {
			return "", err
		}
		canonArgs[i] = c
	}
	return base + "[" + strings.Join(canonArgs, ", ") + "]", nil
}

// parseTemplate splits "base[arg1, arg2]" into ("base", ["arg1","arg2"]).
// A bare name with no brackets returns (name, nil).
func parseTemplate(s string) (base string, args []string, err error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	if open == -1 {
		if s == "" {
			return "", nil, egperr.New(egperr.ParseError, "empty type template")
		}
		return s, nil, nil
	}
	if s[len(s)-1] != ']' {
		return "", nil, egperr.Newf(egperr.ParseError, "malformed type template %q: missing closing bracket", s)
	}
	base = strings.TrimSpace(s[:open])
	if base == "" {
		return "", nil, egperr.Newf(egperr.ParseError, "malformed type template %q: empty base name", s)
	}
	inner := s[open+1 : len(s)-1]
	args, err = splitTopLevel(inner)
	if err != nil {
		return "", nil, err
	}
	if len(args) == 0 {
		return "", nil, egperr.Newf(egperr.ParseError, "malformed type template %q: empty bracket", s)
	}
	return base, args, nil
}

// splitTopLevel splits s on commas that are not nested inside brackets.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, egperr.Newf(egperr.ParseError, "unbalanced brackets in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, egperr.Newf(egperr.ParseError, "unbalanced brackets in %q", s)
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, nil
}
