package capability

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Set accumulates the contracts a controller has learned. It serves prompt
// construction (names, schema manifest) and dispatch-time validation.
type Set struct {
	contracts []Contract
}

// NewSet creates an empty capability set.
func NewSet() *Set {
	return &Set{}
}

// Learn absorbs contracts. Later contracts do not shadow earlier ones; the
// first contract offering a name owns it.
func (s *Set) Learn(contracts ...Contract) {
	for _, c := range contracts {
		if c != nil {
			s.contracts = append(s.contracts, c)
		}
	}
}

// Contracts returns the learned contracts in teach order.
func (s *Set) Contracts() []Contract {
	out := make([]Contract, len(s.contracts))
	copy(out, s.contracts)
	return out
}

// Names lists every learned capability name, deduplicated, in teach order.
func (s *Set) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, c := range s.contracts {
		for _, name := range c.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// JoinedNames renders the capability names for prompt interpolation.
func (s *Set) JoinedNames() string {
	names := s.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// ManifestJSON renders every learned schema as one JSON object keyed by
// capability name, for prompt interpolation.
func (s *Set) ManifestJSON() string {
	manifest := make(map[string]map[string]interface{})
	for _, c := range s.contracts {
		for _, name := range c.Names() {
			if _, taken := manifest[name]; taken {
				continue
			}
			if schema, ok := c.Schema(name); ok {
				manifest[name] = schema
			}
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Resolve returns the contract owning the named capability.
func (s *Set) Resolve(name string) (Contract, bool) {
	for _, c := range s.contracts {
		if _, ok := c.Schema(name); ok {
			return c, true
		}
	}
	return nil, false
}

// Validate checks call arguments against the owning contract's schema.
func (s *Set) Validate(name string, args map[string]interface{}) error {
	c, ok := s.Resolve(name)
	if !ok {
		return fmt.Errorf("unknown capability %q", name)
	}
	return c.Validate(name, args)
}
