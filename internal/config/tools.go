package config

// Tool defines the available tools in the server
const (
	// ToolProjectAnalyze starts a project analysis task
	ToolProjectAnalyze = "project.analyze"
	// ToolTaskGet is the task status retrieval tool name
	ToolTaskGet = "tasks.get"
	// ToolTaskResult is the task result retrieval tool name
	ToolTaskResult = "tasks.result"
	// ToolTaskList is the task listing tool name
	ToolTaskList = "tasks.list"
	// ToolTaskCancel is the task cancellation tool name
	ToolTaskCancel = "tasks.cancel"
	// ToolCacheStats reports project cache statistics
	ToolCacheStats = "cache.stats"
	// ToolCacheInvalidate drops a project from the cache
	ToolCacheInvalidate = "cache.invalidate"
	// ToolCatalog lists the registered tools page by page
	ToolCatalog = "tools.catalog"
)

// AllTools returns a slice of all available tool names
func AllTools() []string {
	return []string{
		ToolProjectAnalyze,
		ToolTaskGet,
		ToolTaskResult,
		ToolTaskList,
		ToolTaskCancel,
		ToolCacheStats,
		ToolCacheInvalidate,
		ToolCatalog,
	}
}

// DefaultCatalogPageSize is the number of tools per tools.catalog page
const DefaultCatalogPageSize = 20
