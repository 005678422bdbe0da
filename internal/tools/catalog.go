package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/codeintel-mcp/internal/pagination"
)

// catalogScope tags tools.catalog cursors so task cursors are not accepted
const catalogScope = "tools"

// CatalogEntry describes one registered tool
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CatalogPage is one page of the tool catalog
type CatalogPage struct {
	Tools      []CatalogEntry `json:"tools"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// CatalogHandler handles tools.catalog requests
type CatalogHandler struct {
	registry *ToolHandlerRegistry
	pageSize int
}

// NewCatalogHandler creates a catalog handler over registry
func NewCatalogHandler(registry *ToolHandlerRegistry, pageSize int) *CatalogHandler {
	return &CatalogHandler{
		registry: registry,
		pageSize: pageSize,
	}
}

// Catalog returns the page addressed by cursor
func (h *CatalogHandler) Catalog(cursor string) CatalogPage {
	registered := h.registry.Tools()
	entries := make([]CatalogEntry, 0, len(registered))
	for _, tool := range registered {
		entries = append(entries, CatalogEntry{Name: tool.Name, Description: tool.Description})
	}

	page := pagination.PaginateScoped(catalogScope, entries, cursor, h.pageSize)
	return CatalogPage{Tools: page.Items, NextCursor: page.NextCursor}
}

// Handle processes tools.catalog requests
func (h *CatalogHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(h.Catalog(request.GetString("cursor", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
