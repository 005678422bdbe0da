package task

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
)

// GetHandler handles tasks.get requests
type GetHandler struct {
	manager TaskManager
}

// NewGetHandler creates a new get handler
func NewGetHandler(manager TaskManager) *GetHandler {
	return &GetHandler{
		manager: manager,
	}
}

// Handle processes tasks.get requests
func (h *GetHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task := h.manager.GetTask(taskID)
	if task == nil {
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrTaskNotFound, taskID)), nil
	}
	return jsonResult(task)
}
