package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/orchestrator"
)

// ServiceName is the gRPC health service name reported alongside the
// overall ("") status.
const ServiceName = "pr-summarizer"

const healthRefreshInterval = 30 * time.Second

// GRPCHealth serves the standard gRPC health protocol, mirroring the
// orchestrator's dependency health.
type GRPCHealth struct {
	svc    Service
	health *health.Server
	server *grpc.Server
	logger *slog.Logger
}

// NewGRPCHealth creates the health service. Call Refresh or Serve to
// publish a status.
func NewGRPCHealth(svc Service, logger *slog.Logger) *GRPCHealth {
	hs := health.NewServer()
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	return &GRPCHealth{svc: svc, health: hs, server: s, logger: logger}
}

// Refresh runs a health check and publishes its outcome. Degraded health
// still serves.
func (g *GRPCHealth) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h := g.svc.HealthCheck(ctx); h.Status == orchestrator.StatusUnhealthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve publishes health on lis until ctx is done or Stop is called.
func (g *GRPCHealth) Serve(ctx context.Context, lis net.Listener) error {
	g.Refresh(ctx)

	go func() {
		ticker := time.NewTicker(healthRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.Refresh(ctx)
			}
		}
	}()

	g.logger.Info("gRPC health service listening", "addr", lis.Addr().String())
	return g.server.Serve(lis)
}

// Stop marks the service as shutting down and stops the server gracefully.
func (g *GRPCHealth) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}
