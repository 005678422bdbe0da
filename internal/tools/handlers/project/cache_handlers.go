package project

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/config"
)

// StatsHandler handles cache.stats requests
type StatsHandler struct {
	cache ProjectCache
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(projects ProjectCache) *StatsHandler {
	return &StatsHandler{cache: projects}
}

// Handle processes cache.stats requests
func (h *StatsHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.cache.Stats())
}

// InvalidateHandler handles cache.invalidate requests
type InvalidateHandler struct {
	cache ProjectCache
}

// NewInvalidateHandler creates a new invalidate handler
func NewInvalidateHandler(projects ProjectCache) *InvalidateHandler {
	return &InvalidateHandler{cache: projects}
}

// Handle processes cache.invalidate requests
func (h *InvalidateHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path %s: %v", path, err)), nil
	}

	if !h.cache.Invalidate(root) {
		return mcp.NewToolResultText(fmt.Sprintf(config.MsgNotCached, root)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(config.MsgInvalidated, root)), nil
}
