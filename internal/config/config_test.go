package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultTaskConfig(t *testing.T) {
	config := DefaultTaskConfig()

	if config.DefaultTTL != DefaultTaskTTL {
		t.Errorf("Expected DefaultTTL %v, got %v", DefaultTaskTTL, config.DefaultTTL)
	}

	if config.MaxTTL != MaxTaskTTL {
		t.Errorf("Expected MaxTTL %v, got %v", MaxTaskTTL, config.MaxTTL)
	}

	if config.PageSize != DefaultTaskPageSize {
		t.Errorf("Expected PageSize %d, got %d", DefaultTaskPageSize, config.PageSize)
	}
}

func TestDefaultCacheConfig(t *testing.T) {
	config := DefaultCacheConfig()

	if config.TTL != DefaultCacheTTL {
		t.Errorf("Expected TTL %v, got %v", DefaultCacheTTL, config.TTL)
	}

	if config.MaxSize != DefaultMaxCacheSize {
		t.Errorf("Expected MaxSize %d, got %d", DefaultMaxCacheSize, config.MaxSize)
	}

	if config.MaxTotalMemoryMB != DefaultMaxTotalMemoryMB {
		t.Errorf("Expected MaxTotalMemoryMB %v, got %v", DefaultMaxTotalMemoryMB, config.MaxTotalMemoryMB)
	}
}

func TestTimingConstants(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected time.Duration
	}{
		{"DefaultTaskTTL", DefaultTaskTTL, 300000 * time.Millisecond},
		{"MaxTaskTTL", MaxTaskTTL, 3600000 * time.Millisecond},
		{"DefaultPollInterval", DefaultPollInterval, 5000 * time.Millisecond},
		{"DefaultTaskSweepInterval", DefaultTaskSweepInterval, 60 * time.Second},
		{"DefaultCacheTTL", DefaultCacheTTL, 300000 * time.Millisecond},
		{"DefaultCacheCleanupInterval", DefaultCacheCleanupInterval, 60 * time.Second},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.duration != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, test.duration)
			}
		})
	}
}

func TestAllTools(t *testing.T) {
	tools := AllTools()
	seen := make(map[string]bool, len(tools))
	for _, name := range tools {
		if seen[name] {
			t.Errorf("duplicate tool name %q", name)
		}
		seen[name] = true
	}
	if !seen[ToolProjectAnalyze] || !seen[ToolTaskList] {
		t.Errorf("expected core tools in %v", tools)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	if cfg.Tasks != want.Tasks {
		t.Errorf("Expected task config %+v, got %+v", want.Tasks, cfg.Tasks)
	}
	if cfg.Cache != want.Cache {
		t.Errorf("Expected cache config %+v, got %+v", want.Cache, cfg.Cache)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("Expected log level info, got %s", cfg.Server.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codeintel.yaml")
	contents := `
server:
  log_level: debug
  grpc_port: 50051
tasks:
  max_ttl: 30m
  default_ttl: 10m
cache:
  max_size: 8
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Server.LogLevel)
	}
	if cfg.Server.GRPCPort != 50051 {
		t.Errorf("Expected grpc port 50051, got %d", cfg.Server.GRPCPort)
	}
	if cfg.Tasks.MaxTTL != 30*time.Minute {
		t.Errorf("Expected MaxTTL 30m, got %v", cfg.Tasks.MaxTTL)
	}
	if cfg.Tasks.DefaultTTL != 10*time.Minute {
		t.Errorf("Expected DefaultTTL 10m, got %v", cfg.Tasks.DefaultTTL)
	}
	if cfg.Cache.MaxSize != 8 {
		t.Errorf("Expected cache max size 8, got %d", cfg.Cache.MaxSize)
	}
	// Untouched keys keep their defaults
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Expected cache TTL %v, got %v", DefaultCacheTTL, cfg.Cache.TTL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codeintel.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  max_size: 8\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("CODEINTEL_CACHE_MAX_SIZE", "3")
	t.Setenv("CODEINTEL_TASKS_POLL_INTERVAL", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cache.MaxSize != 3 {
		t.Errorf("Expected env override max size 3, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Tasks.PollInterval != 2*time.Second {
		t.Errorf("Expected poll interval 2s, got %v", cfg.Tasks.PollInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"CODEINTEL_SERVER_LOG_LEVEL": "chatty"}},
		{"default ttl above max", map[string]string{"CODEINTEL_TASKS_DEFAULT_TTL": "2h"}},
		{"zero cache size", map[string]string{"CODEINTEL_CACHE_MAX_SIZE": "0"}},
		{"page size above max", map[string]string{"CODEINTEL_TASKS_PAGE_SIZE": "500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), "validation failed") {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}
