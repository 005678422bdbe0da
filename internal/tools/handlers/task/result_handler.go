package task

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
)

// ResultHandler handles tasks.result requests
type ResultHandler struct {
	manager TaskManager
}

// NewResultHandler creates a new result handler
func NewResultHandler(manager TaskManager) *ResultHandler {
	return &ResultHandler{
		manager: manager,
	}
}

// Handle processes tasks.result requests. A task that is still running
// yields its snapshot with isTerminal false so the client keeps polling.
func (h *ResultHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := h.manager.GetTaskResult(taskID)
	if result == nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrTaskNotFound, taskID)), nil
	}
	return jsonResult(result)
}
