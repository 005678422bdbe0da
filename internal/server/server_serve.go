package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/AltairaLabs/codeintel-mcp/internal/cache"
	"github.com/AltairaLabs/codeintel-mcp/internal/tasks"
)

// mcpBasePath is where the SSE transport is mounted
const mcpBasePath = "/mcp"

// Stats is the body of the /stats endpoint
type Stats struct {
	Tasks tasks.TaskStats `json:"tasks"`
	Cache cache.Stats     `json:"cache"`
}

// Serve starts the MCP server with stdio transport
func (ms *MCPServer) Serve() error {
	ms.logger.Info("Starting MCP server with stdio transport")
	return mcpserver.ServeStdio(ms.server)
}

// Router returns the HTTP handler: the SSE transport under /mcp plus the
// /stats and /healthz endpoints. addr is advertised to SSE clients.
func (ms *MCPServer) Router(addr string) (http.Handler, *mcpserver.SSEServer) {
	sseServer := mcpserver.NewSSEServer(ms.server,
		mcpserver.WithBaseURL("http://"+addr),
		mcpserver.WithStaticBasePath(mcpBasePath),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle(mcpBasePath+"/*", sseServer)
	r.Get("/stats", ms.handleStats)
	r.Get("/healthz", ms.handleHealth)

	return r, sseServer
}

// ServeHTTP starts the MCP server with HTTP/SSE transport and blocks until
// ctx is cancelled, then shuts down within the configured timeout
func (ms *MCPServer) ServeHTTP(ctx context.Context, addr string) error {
	handler, sseServer := ms.Router(addr)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		ms.logger.Info("Starting MCP server with HTTP/SSE transport", "address", addr, "base_path", mcpBasePath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ms.cfg.ShutdownTimeout)
	defer cancel()

	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		ms.logger.Warn("SSE transport shutdown failed", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	ms.logger.Info("HTTP server stopped")
	return nil
}

func (ms *MCPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		Tasks: ms.manager.Stats(),
		Cache: ms.cache.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		ms.logger.Error("Failed to write stats response", "error", err)
	}
}

func (ms *MCPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		ms.logger.Error("Failed to write health check response", "error", err)
	}
}
