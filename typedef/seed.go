package typedef

import (
	"encoding/json"

	"github.com/erasmus-gp/egpcore/egperr"
)

// LoadJSON registers every type definition in a signed JSON seed
// document (spec §3.1 lifecycle: "types are loaded from a signed JSON
// seed at boot"). The document shape is a map from type name to the
// fields of JSON, with Name left empty (it is taken from the map key).
// Signature verification is the caller's responsibility, via
// seed.LoadSigned; LoadJSON only parses and registers.
func (r *Registry) LoadJSON(data []byte) error {
	var raw map[string]JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return egperr.New(egperr.ParseError, "malformed type seed JSON").WithCause(err)
	}
	for name, j := range raw {
		j.Name = name
		td, err := FromJSON(j)
		if err != nil {
			return err
		}
		if err := r.Register(td); err != nil {
			return err
		}
	}
	return r.Validate()
}

// ToJSON serialises every registered type definition to the same map
// shape LoadJSON accepts, for re-seeding or inspection.
func (r *Registry) ToJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]JSON, len(r.byName))
	for name, td := range r.byName {
		out[name] = td.ToJSON()
	}
	return json.Marshal(out)
}
