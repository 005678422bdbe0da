// Package server composes the MCP tool surface over the task manager and the
// project cache, and bridges task status changes to connected clients.
package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/AltairaLabs/codeintel-mcp/internal/cache"
	"github.com/AltairaLabs/codeintel-mcp/internal/config"
	"github.com/AltairaLabs/codeintel-mcp/internal/tasks"
	"github.com/AltairaLabs/codeintel-mcp/internal/tools"
	"github.com/AltairaLabs/codeintel-mcp/internal/tools/handlers/project"
	"github.com/AltairaLabs/codeintel-mcp/internal/tools/handlers/task"
)

// StatusNotificationMethod is the MCP notification sent on every task
// status change
const StatusNotificationMethod = "notifications/tasks/status"

// clientNotifier sends a notification to every connected client
type clientNotifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// MCPServer wraps the mcp-go server with our business logic
type MCPServer struct {
	server   *mcpserver.MCPServer
	manager  *tasks.Manager
	cache    *cache.ResourceCache
	registry *tools.ToolHandlerRegistry
	notifier clientNotifier
	listener tasks.ListenerID
	cfg      config.ServerConfig
	logger   *slog.Logger
}

// NewMCPServer creates and configures a new MCP server
func NewMCPServer(cfg config.ServerConfig, manager *tasks.Manager, projects *cache.ResourceCache, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	// Create the mcp-go server
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	ms := &MCPServer{
		server:   mcpServer,
		manager:  manager,
		cache:    projects,
		registry: tools.NewToolHandlerRegistry(),
		notifier: mcpServer,
		cfg:      cfg,
		logger:   logger,
	}

	// Register tools
	ms.registerTools()
	ms.listener = manager.OnStatusChange(ms.notifyStatus)

	return ms
}

// registerTools registers all MCP tools with handlers
func (ms *MCPServer) registerTools() {
	taskIDArg := mcp.WithString("task_id",
		mcp.Required(),
		mcp.Description("Task identifier returned by project.analyze"),
	)
	cursorArg := mcp.WithString("cursor",
		mcp.Description("Opaque cursor from a previous page"),
	)

	ms.addTool(mcp.NewTool(config.ToolProjectAnalyze,
		mcp.WithDescription("Analyze a project directory as a pollable task"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory to analyze"),
		),
		mcp.WithNumber("ttl",
			mcp.Description("Task retention in milliseconds (default 300000, max 3600000)"),
		),
	), project.NewAnalyzeHandler(ms.manager, ms.cache, ms.logger).Handle)

	ms.addTool(mcp.NewTool(config.ToolTaskGet,
		mcp.WithDescription("Get the current status of a task"),
		taskIDArg,
	), task.NewGetHandler(ms.manager).Handle)

	ms.addTool(mcp.NewTool(config.ToolTaskResult,
		mcp.WithDescription("Get the result of a task, or its status while it is still running"),
		taskIDArg,
	), task.NewResultHandler(ms.manager).Handle)

	ms.addTool(mcp.NewTool(config.ToolTaskList,
		mcp.WithDescription("List live tasks, newest first"),
		cursorArg,
	), task.NewListHandler(ms.manager).Handle)

	ms.addTool(mcp.NewTool(config.ToolTaskCancel,
		mcp.WithDescription("Cancel a running task"),
		taskIDArg,
	), task.NewCancelHandler(ms.manager).Handle)

	ms.addTool(mcp.NewTool(config.ToolCacheStats,
		mcp.WithDescription("Report project cache statistics"),
	), project.NewStatsHandler(ms.cache).Handle)

	ms.addTool(mcp.NewTool(config.ToolCacheInvalidate,
		mcp.WithDescription("Drop a project from the cache"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory whose cached analysis should be dropped"),
		),
	), project.NewInvalidateHandler(ms.cache).Handle)

	ms.addTool(mcp.NewTool(config.ToolCatalog,
		mcp.WithDescription("List the available tools page by page"),
		cursorArg,
	), tools.NewCatalogHandler(ms.registry, config.DefaultCatalogPageSize).Handle)
}

func (ms *MCPServer) addTool(tool mcp.Tool, handler tools.ToolHandlerFunc) {
	ms.registry.Register(tool, handler)
	ms.server.AddTool(tool, mcpserver.ToolHandlerFunc(handler))
}

// notifyStatus forwards a task status change to every connected client
func (ms *MCPServer) notifyStatus(t tasks.Task) error {
	params := map[string]any{
		"taskId":        t.TaskID,
		"status":        string(t.Status),
		"lastUpdatedAt": t.LastUpdatedAt,
		"pollInterval":  t.PollInterval,
	}
	if t.StatusMessage != "" {
		params["statusMessage"] = t.StatusMessage
	}
	if t.ProgressToken != "" {
		params["progressToken"] = t.ProgressToken
	}

	ms.notifier.SendNotificationToAllClients(StatusNotificationMethod, params)
	ms.logger.Debug("Sent task status notification",
		"task_id", t.TaskID,
		"status", t.Status,
	)
	return nil
}

// Registry returns the registered tools
func (ms *MCPServer) Registry() *tools.ToolHandlerRegistry {
	return ms.registry
}

// Close detaches the server from the task manager
func (ms *MCPServer) Close() {
	ms.manager.OffStatusChange(ms.listener)
}
