package task

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/tasks"
)

// TaskManager defines the task operations the handlers need
type TaskManager interface {
	GetTask(taskID string) *tasks.Task
	GetTaskResult(taskID string) *tasks.TaskResult
	ListTasks(cursor string) tasks.ListResult
	CancelTask(taskID string) (*tasks.Task, error)
}

// jsonResult renders v as a text tool result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
