package task

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListHandler handles tasks.list requests
type ListHandler struct {
	manager TaskManager
}

// NewListHandler creates a new list handler
func NewListHandler(manager TaskManager) *ListHandler {
	return &ListHandler{
		manager: manager,
	}
}

// Handle processes tasks.list requests
func (h *ListHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cursor := request.GetString("cursor", "")
	return jsonResult(h.manager.ListTasks(cursor))
}
