package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g.
// CODEINTEL_TASKS_MAX_TTL=30m.
const EnvPrefix = "CODEINTEL"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. An empty path
// skips the file. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.name", d.Server.Name)
	v.SetDefault("server.version", d.Server.Version)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.http_addr", d.Server.HTTPAddr)
	v.SetDefault("server.grpc_port", d.Server.GRPCPort)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("tasks.default_ttl", d.Tasks.DefaultTTL)
	v.SetDefault("tasks.max_ttl", d.Tasks.MaxTTL)
	v.SetDefault("tasks.poll_interval", d.Tasks.PollInterval)
	v.SetDefault("tasks.sweep_interval", d.Tasks.SweepInterval)
	v.SetDefault("tasks.page_size", d.Tasks.PageSize)

	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.max_total_memory_mb", d.Cache.MaxTotalMemoryMB)
	v.SetDefault("cache.max_project_memory_mb", d.Cache.MaxProjectMemoryMB)
	v.SetDefault("cache.base_memory_mb", d.Cache.BaseMemoryMB)
	v.SetDefault("cache.memory_per_file_mb", d.Cache.MemoryPerFileMB)
}
