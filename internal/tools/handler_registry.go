// Package tools keeps the registered MCP tools and serves the paginated
// tools.catalog listing over them.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolHandlerFunc is a function that handles a tool call
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolHandlerRegistry maps tool names to their definitions and handlers,
// remembering registration order
type ToolHandlerRegistry struct {
	mu       sync.RWMutex
	tools    map[string]mcp.Tool
	handlers map[string]ToolHandlerFunc
	order    []string
}

// NewToolHandlerRegistry creates an empty registry
func NewToolHandlerRegistry() *ToolHandlerRegistry {
	return &ToolHandlerRegistry{
		tools:    make(map[string]mcp.Tool),
		handlers: make(map[string]ToolHandlerFunc),
	}
}

// Register adds or replaces a tool. A replaced tool keeps its position.
func (r *ToolHandlerRegistry) Register(tool mcp.Tool, handler ToolHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
}

// GetHandler returns the handler function for a given tool name
func (r *ToolHandlerRegistry) GetHandler(toolName string) (ToolHandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[toolName]
	if !ok {
		return nil, fmt.Errorf("no handler registered for tool: %s", toolName)
	}
	return h, nil
}

// GetAllHandlers returns a shallow copy of the handlers
func (r *ToolHandlerRegistry) GetAllHandlers() map[string]ToolHandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ToolHandlerFunc, len(r.handlers))
	for k, v := range r.handlers {
		out[k] = v
	}
	return out
}

// Tools returns the tool definitions in registration order
func (r *ToolHandlerRegistry) Tools() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}
