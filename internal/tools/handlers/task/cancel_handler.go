package task

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
)

// CancelHandler handles tasks.cancel requests
type CancelHandler struct {
	manager TaskManager
}

// NewCancelHandler creates a new cancel handler
func NewCancelHandler(manager TaskManager) *CancelHandler {
	return &CancelHandler{
		manager: manager,
	}
}

// Handle processes tasks.cancel requests
func (h *CancelHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := h.manager.CancelTask(taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if task == nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrTaskNotFound, taskID)), nil
	}
	return jsonResult(task)
}
