package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/AltairaLabs/codeintel-mcp/internal/analysis"
	"github.com/AltairaLabs/codeintel-mcp/internal/cache"
	"github.com/AltairaLabs/codeintel-mcp/internal/config"
	"github.com/AltairaLabs/codeintel-mcp/internal/server"
	"github.com/AltairaLabs/codeintel-mcp/internal/tasks"
)

var (
	version    = flag.Bool("version", false, "Print version and exit")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	httpMode   = flag.Bool("http", false, "Enable HTTP/SSE transport instead of stdio")
	configPath = flag.String("config", "", "Path to a YAML configuration file")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("CodeIntel MCP Server v%s\n", config.DefaultServerConfig().Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *debug {
		cfg.Server.LogLevel = "debug"
	}
	if *httpMode && cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = defaultHTTPAddr
	}

	// Setup structured logging
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

const defaultHTTPAddr = ":8080"

// newLogger returns the JSON logger on stderr. stdout is reserved for the
// stdio transport.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// run wires the components and blocks until ctx is cancelled or the
// transport fails
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Starting CodeIntel MCP Server",
		"version", cfg.Server.Version,
		"log_level", cfg.Server.LogLevel,
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_port", cfg.Server.GRPCPort,
	)

	manager := tasks.NewManager(cfg.Tasks, logger)
	defer manager.Dispose()

	projects := cache.NewResourceCache(cfg.Cache, analysis.NewBuilder(logger), logger)
	defer projects.Close()

	mcpServer := server.NewMCPServer(cfg.Server, manager, projects, logger)
	defer mcpServer.Close()

	logger.Info("MCP Server initialized",
		"name", cfg.Server.Name,
		"version", cfg.Server.Version,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Server.GRPCPort > 0 {
		listenConfig := net.ListenConfig{}
		lis, err := listenConfig.Listen(ctx, "tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.GRPCPort, err)
		}

		healthServer := server.NewHealthServer(cfg.Server.Name, logger)
		defer healthServer.Stop(cfg.Server.ShutdownTimeout)

		go func() {
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
				cancel()
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.Server.HTTPAddr != "" {
			errCh <- mcpServer.ServeHTTP(ctx, cfg.Server.HTTPAddr)
			return
		}
		errCh <- mcpServer.Serve()
	}()

	var err error
	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("MCP server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	logger.Info("Shutting down gracefully")
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer waitCancel()
	if waitErr := manager.Wait(waitCtx); waitErr != nil {
		logger.Warn("Running tasks did not finish before shutdown", "error", waitErr)
	}

	logger.Info("CodeIntel MCP Server shutdown complete")
	return err
}
