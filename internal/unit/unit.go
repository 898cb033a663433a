// Package unit wraps one chat-capable collaborator: an LLM provider plus
// optional tool access. A unit resolves its own tool calls and hands back
// plain text, so callers never see provider-level plumbing.
package unit

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/vinayprograms/agentkit/llm"
	"github.com/vinayprograms/agentkit/logging"
	"github.com/vinayprograms/agentkit/mcp"
	"github.com/vinayprograms/agentkit/tools"

	"github.com/vinayprograms/mission/internal/capability"
	"github.com/vinayprograms/mission/internal/events"
)

// concurrencyLimit caps parallel tool executions per chat turn.
// 4x CPU count for I/O-bound tools, clamped to [4, 32].
var concurrencyLimit = func() int {
	limit := runtime.NumCPU() * 4
	if limit < 4 {
		limit = 4
	}
	if limit > 32 {
		limit = 32
	}
	return limit
}()

// Unit is one collaborator. Zero tool sources make it a pure reasoner, which
// is what a planner is.
type Unit struct {
	name     string
	provider llm.Provider
	registry *tools.Registry
	manager  *mcp.Manager
	events   *events.Log
	logger   *logging.Logger
}

// Option configures a Unit.
type Option func(*Unit)

// WithRegistry grants access to built-in tools.
func WithRegistry(reg *tools.Registry) Option {
	return func(u *Unit) { u.registry = reg }
}

// WithMCP grants access to MCP server tools.
func WithMCP(mgr *mcp.Manager) Option {
	return func(u *Unit) { u.manager = mgr }
}

// WithEventLog routes tool outcomes into an operational event log.
func WithEventLog(log *events.Log) Option {
	return func(u *Unit) { u.events = log }
}

// New creates a unit around a provider.
func New(name string, provider llm.Provider, opts ...Option) *Unit {
	u := &Unit{
		name:     name,
		provider: provider,
		logger:   logging.New().WithComponent("unit"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name identifies the unit in contracts and logs.
func (u *Unit) Name() string { return u.name }

// HasTools reports whether the unit can act on the environment.
func (u *Unit) HasTools() bool {
	return u.registry != nil || u.manager != nil
}

// Teach returns the capability contracts this unit can offer a controller.
// A unit without tools teaches a single empty manifest.
func (u *Unit) Teach() []capability.Contract {
	var contracts []capability.Contract
	if u.registry != nil {
		contracts = append(contracts, capability.FromRegistry(u.name, u.registry))
	}
	if u.manager != nil {
		contracts = append(contracts, capability.FromMCP(u.name, u.manager))
	}
	if len(contracts) == 0 {
		contracts = append(contracts, capability.Manifest{Unit: u.name})
	}
	return contracts
}

// Chat sends the conversation to the provider and resolves tool calls until
// the provider answers with plain content. The caller's slice is never
// mutated.
func (u *Unit) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	msgs := make([]llm.Message, len(messages))
	copy(msgs, messages)

	toolDefs := u.toolDefinitions()
	for {
		start := time.Now()
		resp, err := u.provider.Chat(ctx, llm.ChatRequest{
			Messages: msgs,
			Tools:    toolDefs,
		})
		if err != nil {
			return "", fmt.Errorf("%s chat failed: %w", u.name, err)
		}
		u.logger.Debug("chat turn", map[string]interface{}{
			"unit":        u.name,
			"model":       resp.Model,
			"duration_ms": time.Since(start).Milliseconds(),
			"tool_calls":  len(resp.ToolCalls),
		})

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		msgs = append(msgs, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		msgs = append(msgs, u.executeToolCalls(ctx, resp.ToolCalls)...)
	}
}

// toolDefinitions collects definitions from the registry and MCP servers.
func (u *Unit) toolDefinitions() []llm.ToolDef {
	var defs []llm.ToolDef
	if u.registry != nil {
		for _, d := range u.registry.Definitions() {
			defs = append(defs, llm.ToolDef(d))
		}
	}
	if u.manager != nil {
		for _, t := range u.manager.AllTools() {
			defs = append(defs, llm.ToolDef{
				Name:        fmt.Sprintf("mcp_%s_%s", t.Server, t.Tool.Name),
				Description: fmt.Sprintf("[MCP:%s] %s", t.Server, t.Tool.Description),
				Parameters:  t.Tool.InputSchema,
			})
		}
	}
	return defs
}

// executeTool runs one tool call after validating its arguments against the
// unit's own contract.
func (u *Unit) executeTool(ctx context.Context, tc llm.ToolCallResponse) (interface{}, error) {
	for _, c := range u.Teach() {
		if _, ok := c.Schema(tc.Name); ok {
			if err := c.Validate(tc.Name, tc.Args); err != nil {
				return nil, err
			}
			break
		}
	}

	if strings.HasPrefix(tc.Name, "mcp_") {
		return u.executeMCPTool(ctx, tc)
	}

	if u.registry == nil {
		return nil, fmt.Errorf("no tool registry")
	}
	tool := u.registry.Get(tc.Name)
	if tool == nil {
		return nil, fmt.Errorf("tool not found: %s", tc.Name)
	}
	return tool.Execute(ctx, tc.Args)
}

// executeMCPTool dispatches an mcp_<server>_<tool> call and flattens the
// text content of the reply.
func (u *Unit) executeMCPTool(ctx context.Context, tc llm.ToolCallResponse) (interface{}, error) {
	if u.manager == nil {
		return nil, fmt.Errorf("no MCP manager configured")
	}

	parts := strings.SplitN(strings.TrimPrefix(tc.Name, "mcp_"), "_", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid MCP tool name: %s", tc.Name)
	}
	server, toolName := parts[0], parts[1]

	result, err := u.manager.CallTool(ctx, server, toolName, tc.Args)
	if err != nil {
		return nil, err
	}

	var output strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			output.WriteString(c.Text)
		}
	}
	return output.String(), nil
}
