package config

import "time"

// Default timing configurations used throughout the server
const (
	// DefaultTaskTTL is the retention applied when a task request carries no TTL
	DefaultTaskTTL = 5 * time.Minute

	// MaxTaskTTL is the upper bound every requested task TTL is clamped to
	MaxTaskTTL = 1 * time.Hour

	// DefaultPollInterval is the suggested delay between client polls of a task
	DefaultPollInterval = 5 * time.Second

	// DefaultTaskSweepInterval is how often expired tasks are removed
	DefaultTaskSweepInterval = 1 * time.Minute

	// DefaultTaskPageSize is the fixed page size of task listings
	DefaultTaskPageSize = 20

	// DefaultCacheTTL is how long an unused project handle stays cached
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheCleanupInterval is the minimum gap between lazy cache sweeps
	DefaultCacheCleanupInterval = 1 * time.Minute

	// DefaultShutdownTimeout bounds graceful server shutdown
	DefaultShutdownTimeout = 2 * time.Second
)

// Default cache sizing
const (
	// DefaultMaxCacheSize is the maximum number of cached project handles
	DefaultMaxCacheSize = 5

	// DefaultMaxTotalMemoryMB is the memory budget across all cached handles
	DefaultMaxTotalMemoryMB = 200.0

	// DefaultMaxProjectMemoryMB is the largest single handle that will be cached
	DefaultMaxProjectMemoryMB = 100.0

	// DefaultBaseMemoryMB is the fixed cost of every handle
	DefaultBaseMemoryMB = 1.0

	// DefaultMemoryPerFileMB is the per-file cost of a handle
	DefaultMemoryPerFileMB = 0.5
)
