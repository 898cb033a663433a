// Package capability implements the contract through which mission units
// teach each other what they can do: named operations, parameter schemas,
// and argument validation. The controller depends on this contract alone,
// never on concrete tool plumbing.
package capability

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Contract is the fixed capability surface of one unit.
type Contract interface {
	// UnitID identifies the teaching unit.
	UnitID() string
	// Names lists the offered capability names, sorted.
	Names() []string
	// Schema returns the parameter schema of one capability.
	Schema(name string) (map[string]interface{}, bool)
	// Validate checks call arguments against a capability's schema.
	Validate(name string, args map[string]interface{}) error
}

// Manifest is a static Contract: the shape capabilities travel in when
// taught. A Manifest with no schemas is the contract of a unit that offers
// nothing, which is what an orchestrator teaches.
type Manifest struct {
	Unit    string                            `json:"unit"`
	Schemas map[string]map[string]interface{} `json:"schemas,omitempty"`
}

// UnitID implements Contract.
func (m Manifest) UnitID() string { return m.Unit }

// Names implements Contract.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m.Schemas))
	for name := range m.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema implements Contract.
func (m Manifest) Schema(name string) (map[string]interface{}, bool) {
	schema, ok := m.Schemas[name]
	return schema, ok
}

// Validate implements Contract.
func (m Manifest) Validate(name string, args map[string]interface{}) error {
	schema, ok := m.Schemas[name]
	if !ok {
		return fmt.Errorf("unknown capability %q", name)
	}
	return validateRequired(name, schema, args)
}

// validateRequired checks args against a JSON-schema style "required" list.
// Schemas without one accept any arguments.
func validateRequired(name string, schema, args map[string]interface{}) error {
	var required []string
	switch v := schema["required"].(type) {
	case []string:
		required = v
	case []interface{}:
		for _, r := range v {
			if key, ok := r.(string); ok {
				required = append(required, key)
			}
		}
	}

	var missing []string
	for _, key := range required {
		if _, present := args[key]; !present {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("capability %q missing required arguments: %s", name, strings.Join(missing, ", "))
	}
	return nil
}

// toSchemaMap normalizes an opaque parameter declaration to a plain map via
// a JSON round trip.
func toSchemaMap(params interface{}) map[string]interface{} {
	if m, ok := params.(map[string]interface{}); ok {
		return m
	}
	data, err := json.Marshal(params)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
