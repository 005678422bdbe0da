package server

import (
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer serves the standard gRPC health service so orchestrators can
// probe the process
type HealthServer struct {
	grpc    *grpc.Server
	health  *health.Server
	service string
	logger  *slog.Logger
}

// NewHealthServer creates a gRPC server exposing grpc.health.v1 for service
// and for the overall server ("")
func NewHealthServer(service string, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)

	return &HealthServer{
		grpc:    grpcServer,
		health:  healthServer,
		service: service,
		logger:  logger,
	}
}

// Serve accepts connections on lis until Stop is called
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("Starting gRPC health server", "address", lis.Addr().String(), "service", h.service)
	return h.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and stops the server, forcing it
// after timeout
func (h *HealthServer) Stop(timeout time.Duration) {
	h.health.Shutdown()

	shutdownComplete := make(chan struct{})
	go func() {
		h.grpc.GracefulStop()
		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		h.logger.Info("gRPC health server stopped gracefully")
	case <-time.After(timeout):
		h.logger.Warn("Graceful shutdown timeout, forcing stop")
		h.grpc.Stop()
		<-shutdownComplete
	}
}
