// Package tools provides the tool gateway and the mock backends it fronts.
package tools

import (
	"context"
	"fmt"
	"sort"
)

// Tool is the interface that all gateway tools must implement.
type Tool interface {
	// Name returns the tool identifier used in plans.
	Name() string
	// Description returns a human-readable description for listings.
	Description() string
	// Parameters returns the JSON Schema for tool parameters.
	Parameters() map[string]any
	// Execute runs the tool with the given arguments.
	// Failures are returned as error values with a textual message;
	// no tool may panic across this boundary.
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// TieredTool is an optional interface for tools that declare a risk tier.
type TieredTool interface {
	Tool
	Tier() int
}

// Risk tier constants.
const (
	TierReadOnly    = 0 // Read-only lookups, always allowed
	TierWrite       = 1 // Controlled writes
	TierDestructive = 2 // Destructive actions, require human approval
)

// ToolTier returns the risk tier for a tool.
// Unclassified tools default to TierReadOnly.
func ToolTier(t Tool) int {
	if tt, ok := t.(TieredTool); ok {
		return tt.Tier()
	}
	return TierReadOnly
}

// Gateway invokes a named tool with arguments and returns either a success
// value or an error carrying the failure message.
type Gateway interface {
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
}

// Registry manages tool registration and is the default Gateway.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools ordered by name.
func (r *Registry) List() []Tool {
	result := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Invoke runs a tool by name with the given arguments.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(ctx, args)
}

// GetString extracts a string argument with a default value.
func GetString(args map[string]any, key string, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// GetMap extracts a map argument, returning nil when absent.
func GetMap(args map[string]any, key string) map[string]any {
	if v, ok := args[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}
