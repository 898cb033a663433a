package capability

import (
	"fmt"
	"sort"

	"github.com/vinayprograms/agentkit/mcp"
	"github.com/vinayprograms/agentkit/tools"
)

// FromRegistry exposes a tool registry's definitions as a Contract. The
// contract reads the registry live, so tools registered later are visible.
func FromRegistry(unitID string, reg *tools.Registry) Contract {
	return &registryContract{unit: unitID, registry: reg}
}

type registryContract struct {
	unit     string
	registry *tools.Registry
}

func (c *registryContract) UnitID() string { return c.unit }

func (c *registryContract) Names() []string {
	var names []string
	for _, def := range c.registry.Definitions() {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

func (c *registryContract) Schema(name string) (map[string]interface{}, bool) {
	for _, def := range c.registry.Definitions() {
		if def.Name == name {
			return toSchemaMap(def.Parameters), true
		}
	}
	return nil, false
}

func (c *registryContract) Validate(name string, args map[string]interface{}) error {
	schema, ok := c.Schema(name)
	if !ok {
		return fmt.Errorf("unknown capability %q", name)
	}
	return validateRequired(name, schema, args)
}

// FromMCP exposes the tools of connected MCP servers as a Contract. Names
// follow the mcp_<server>_<tool> convention the dispatch path expects.
func FromMCP(unitID string, mgr *mcp.Manager) Contract {
	return &mcpContract{unit: unitID, manager: mgr}
}

type mcpContract struct {
	unit    string
	manager *mcp.Manager
}

func (c *mcpContract) UnitID() string { return c.unit }

func (c *mcpContract) Names() []string {
	var names []string
	for _, t := range c.manager.AllTools() {
		names = append(names, fmt.Sprintf("mcp_%s_%s", t.Server, t.Tool.Name))
	}
	sort.Strings(names)
	return names
}

func (c *mcpContract) Schema(name string) (map[string]interface{}, bool) {
	for _, t := range c.manager.AllTools() {
		if fmt.Sprintf("mcp_%s_%s", t.Server, t.Tool.Name) == name {
			return toSchemaMap(t.Tool.InputSchema), true
		}
	}
	return nil, false
}

func (c *mcpContract) Validate(name string, args map[string]interface{}) error {
	schema, ok := c.Schema(name)
	if !ok {
		return fmt.Errorf("unknown capability %q", name)
	}
	return validateRequired(name, schema, args)
}
