// Package grpc serves the gRPC health protocol so orchestrators can probe the
// service the same way they probe other gRPC backends.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"toolcrib-backend/internal/api/grpc/interceptor"
	"toolcrib-backend/internal/logger"
)

// ServiceName is the health service name reported alongside the overall "".
const ServiceName = "toolcrib.v1.ToolCrib"

// Pinger checks a dependency the service cannot work without.
type Pinger func(ctx context.Context) error

type HealthServer struct {
	Server *grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor().Unary()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	reflection.Register(server)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{Server: server, health: hs}
}

func (h *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(ServiceName, st)
}

// Watch pings every interval until ctx is done and flips the serving status
// on each change.
func (h *HealthServer) Watch(ctx context.Context, ping Pinger, interval time.Duration) {
	check := func() bool {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := ping(pctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			return false
		}
		return true
	}

	last := check()
	h.SetServing(last)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.SetServing(false)
			return
		case <-ticker.C:
			if ok := check(); ok != last {
				logger.Info("Health status changed", "serving", ok)
				last = ok
				h.SetServing(ok)
			}
		}
	}
}

// Shutdown marks the service as not serving and stops the server gracefully.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
	h.Server.GracefulStop()
}
