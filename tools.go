package agenteval

import (
	"context"
	"encoding/json"
)

// ToolSpec is the declarative tool schema exposed to the agent.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Strict      bool           `json:"strict,omitempty"`
}

// ToolDefinition is the evaluation-format projection of a tool schema.
type ToolDefinition struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Definition converts the spec to the shape evaluators expect.
func (s ToolSpec) Definition() ToolDefinition {
	return ToolDefinition{
		Type:        "function",
		Name:        s.Name,
		Description: s.Description,
		Parameters:  s.Parameters,
	}
}

// Tool is a locally executable simulated business operation. Execute returns
// a JSON-serializable mapping; semantic failure belongs in the mapping
// (e.g. {"success": false}), a non-nil error means the invocation itself
// failed and is reported back to the agent as {"error": ...}.
type Tool interface {
	Spec() ToolSpec
	Execute(ctx context.Context, args json.RawMessage) (map[string]any, error)
}

// ToolCall is one captured invocation request, in the heterogeneous shape
// evaluators consume: function calls carry name/arguments, built-in search
// calls carry their queries instead.
type ToolCall struct {
	Type       string         `json:"type"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Arguments  map[string]any `json:"arguments,omitempty"`
	Queries    []string       `json:"queries,omitempty"`
	Query      string         `json:"query,omitempty"`
}

const (
	// ToolCallFunction marks a registry-backed function invocation.
	ToolCallFunction = "tool_call"
	// ToolCallFileSearch marks a service-resolved file search invocation.
	ToolCallFileSearch = "file_search"
	// ToolCallAzureSearch marks a service-resolved index search invocation.
	ToolCallAzureSearch = "azure_ai_search"
)

// Registry is an immutable exact-match mapping from tool name to Tool.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. Registration order is
// preserved by Specs and Definitions.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Spec().Name
		if _, ok := r.tools[name]; ok {
			continue
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns every registered tool schema.
func (r *Registry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Definitions returns every registered tool in evaluation format.
func (r *Registry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Spec().Definition())
	}
	return defs
}
