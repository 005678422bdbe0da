package project

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/cache"
	"github.com/AltairaLabs/codeintel-mcp/internal/tasks"
)

// TaskManager defines the task operations the analyze handler needs
type TaskManager interface {
	CreateTask(method string, params map[string]any, taskParams *tasks.TaskParams, progressToken string) tasks.Task
	ExecuteTask(taskID string, executor tasks.Executor) error
}

// ProjectCache defines the cache operations the handlers need
type ProjectCache interface {
	GetOrCreate(ctx context.Context, key string) (cache.Handle, error)
	Invalidate(key string) bool
	Stats() cache.Stats
	EstimateMemoryMB(fileCount int) float64
}

// jsonResult renders v as a text tool result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
