package project

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/AltairaLabs/codeintel-mcp/internal/analysis"
	"github.com/AltairaLabs/codeintel-mcp/internal/cache"
	"github.com/AltairaLabs/codeintel-mcp/internal/config"
	"github.com/AltairaLabs/codeintel-mcp/internal/tasks"
)

// AnalyzeHandler handles project.analyze requests. The analysis runs as a
// task; the response is the task projection the client polls with.
type AnalyzeHandler struct {
	manager TaskManager
	cache   ProjectCache
	logger  *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(manager TaskManager, projects ProjectCache, logger *slog.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeHandler{
		manager: manager,
		cache:   projects,
		logger:  logger,
	}
}

// Handle processes project.analyze requests
func (h *AnalyzeHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path %s: %v", path, err)), nil
	}

	taskParams, err := ttlParam(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task := h.manager.CreateTask(config.ToolProjectAnalyze, map[string]any{"path": root}, taskParams, progressToken(request))
	if err := h.manager.ExecuteTask(task.TaskID, h.analyze(root)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.logger.Info(fmt.Sprintf(config.MsgTaskStarted, task.TaskID, root),
		"task_id", task.TaskID,
		"path", root,
		"ttl_ms", task.TTL,
	)
	return jsonResult(task)
}

// analyze returns the executor that indexes root through the cache
func (h *AnalyzeHandler) analyze(root string) tasks.Executor {
	return func(ctx context.Context) (any, error) {
		handle, err := h.cache.GetOrCreate(ctx, root)
		if err != nil {
			return nil, err
		}
		project, ok := handle.(*analysis.Project)
		if !ok {
			return nil, fmt.Errorf("unexpected handle type %T for %s", handle, root)
		}
		return analysis.Summarize(project, h.cache.EstimateMemoryMB(project.FileCount())), nil
	}
}

// ttlParam reads the optional ttl argument in milliseconds. JSON numbers and
// numeric strings are both accepted.
func ttlParam(request mcp.CallToolRequest) (*tasks.TaskParams, error) {
	raw, ok := request.GetArguments()["ttl"]
	if !ok || raw == nil {
		return nil, nil
	}
	ms, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, fmt.Errorf(config.ErrInvalidTTL, raw)
	}
	return &tasks.TaskParams{TTL: time.Duration(ms) * time.Millisecond}, nil
}

// progressToken returns the request's progress token as a string, if any
func progressToken(request mcp.CallToolRequest) string {
	if request.Params.Meta == nil || request.Params.Meta.ProgressToken == nil {
		return ""
	}
	return cast.ToString(request.Params.Meta.ProgressToken)
}

var _ ProjectCache = (*cache.ResourceCache)(nil)
