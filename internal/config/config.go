package config

import "time"

// Config holds all server configuration, grouped by subsystem
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Tasks  TaskConfig   `mapstructure:"tasks" validate:"required"`
	Cache  CacheConfig  `mapstructure:"cache" validate:"required"`
}

// ServerConfig holds transport and logging settings
type ServerConfig struct {
	// Name is the MCP server name reported to clients
	Name string `mapstructure:"name" validate:"required"`
	// Version is the MCP server version reported to clients
	Version string `mapstructure:"version" validate:"required"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// HTTPAddr enables the HTTP/SSE transport when non-empty
	HTTPAddr string `mapstructure:"http_addr"`
	// GRPCPort enables the gRPC health endpoint when non-zero
	GRPCPort int `mapstructure:"grpc_port" validate:"gte=0,lt=65536"`
	// ShutdownTimeout bounds graceful shutdown of the listeners
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// TaskConfig holds configuration for the task lifecycle manager
type TaskConfig struct {
	// DefaultTTL applies when a request carries no TTL
	DefaultTTL time.Duration `mapstructure:"default_ttl" validate:"gt=0,ltefield=MaxTTL"`
	// MaxTTL clamps every requested TTL
	MaxTTL time.Duration `mapstructure:"max_ttl" validate:"gt=0"`
	// PollInterval is the suggested client poll interval
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	// SweepInterval is how often expired tasks are removed
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	// PageSize is the number of tasks per listing page
	PageSize int `mapstructure:"page_size" validate:"gt=0,lte=100"`
}

// DefaultTaskConfig returns default configuration for the task manager
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		DefaultTTL:    DefaultTaskTTL,
		MaxTTL:        MaxTaskTTL,
		PollInterval:  DefaultPollInterval,
		SweepInterval: DefaultTaskSweepInterval,
		PageSize:      DefaultTaskPageSize,
	}
}

// CacheConfig holds configuration for the project handle cache
type CacheConfig struct {
	// TTL is how long an entry may go unused before it stops being a hit
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
	// CleanupInterval is the minimum gap between lazy expiry sweeps
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
	// MaxSize is the maximum number of cached handles
	MaxSize int `mapstructure:"max_size" validate:"gt=0"`
	// MaxTotalMemoryMB is the memory budget across all handles
	MaxTotalMemoryMB float64 `mapstructure:"max_total_memory_mb" validate:"gt=0"`
	// MaxProjectMemoryMB is the largest handle that will be cached
	MaxProjectMemoryMB float64 `mapstructure:"max_project_memory_mb" validate:"gt=0"`
	// BaseMemoryMB is the fixed estimated cost of a handle
	BaseMemoryMB float64 `mapstructure:"base_memory_mb" validate:"gte=0"`
	// MemoryPerFileMB is the estimated cost of each file in a handle
	MemoryPerFileMB float64 `mapstructure:"memory_per_file_mb" validate:"gte=0"`
}

// DefaultCacheConfig returns default configuration for caching
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:                DefaultCacheTTL,
		CleanupInterval:    DefaultCacheCleanupInterval,
		MaxSize:            DefaultMaxCacheSize,
		MaxTotalMemoryMB:   DefaultMaxTotalMemoryMB,
		MaxProjectMemoryMB: DefaultMaxProjectMemoryMB,
		BaseMemoryMB:       DefaultBaseMemoryMB,
		MemoryPerFileMB:    DefaultMemoryPerFileMB,
	}
}

// DefaultServerConfig returns default transport and logging settings
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:            "codeintel-mcp",
		Version:         "0.1.0",
		LogLevel:        "info",
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Default returns the complete default configuration
func Default() Config {
	return Config{
		Server: DefaultServerConfig(),
		Tasks:  DefaultTaskConfig(),
		Cache:  DefaultCacheConfig(),
	}
}
