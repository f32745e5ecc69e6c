// Package grpc implements the gRPC host link.
//
// The link serves the standard grpc.health.v1 service with one entry per
// registered provider, so hosts and orchestrators can watch provider health
// with stock tooling, plus server reflection for debugging. Synthesis over
// gRPC is not part of the host contract; hosts synthesize over the HTTP
// link.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/engine"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/hostlink"
)

// probeInterval is how often provider health is re-checked.
const probeInterval = 30 * time.Second

// probeTimeout bounds one provider health round-trip.
const probeTimeout = 5 * time.Second

// Link implements hostlink.Link over gRPC.
type Link struct {
	port   int
	eng    *engine.Engine
	server *grpc.Server
}

// New creates a gRPC link on the given port.
func New(port int, eng *engine.Engine) *Link {
	return &Link{port: port, eng: eng}
}

// Name returns the link identifier.
func (l *Link) Name() string { return "grpc" }

// Listen starts the gRPC server. The handler is unused for now: this link
// only exposes health and reflection.
func (l *Link) Listen(ctx context.Context, handler hostlink.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	l.server = grpc.NewServer()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(l.server, healthServer)
	reflection.Register(l.server)

	// The empty service name reports overall plugin liveness.
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go l.probeLoop(ctx, healthServer)

	slog.Info("grpc link listening", "port", l.port)

	go func() {
		<-ctx.Done()
		slog.Info("grpc link shutting down")
		healthServer.Shutdown()
		l.server.GracefulStop()
	}()

	return l.server.Serve(lis)
}

// probeLoop keeps the per-provider health entries current.
func (l *Link) probeLoop(ctx context.Context, hs *health.Server) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	l.probeProviders(ctx, hs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.probeProviders(ctx, hs)
		}
	}
}

func (l *Link) probeProviders(ctx context.Context, hs *health.Server) {
	for _, name := range l.eng.Providers() {
		p, err := l.eng.Resolve(name)
		if err != nil {
			continue
		}

		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		status := healthpb.HealthCheckResponse_SERVING
		if err := p.HealthCheck(probeCtx); err != nil {
			slog.Warn("provider health check failed", "provider", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		cancel()

		hs.SetServingStatus(name, status)
	}
}

// Close gracefully stops the gRPC server.
func (l *Link) Close() error {
	if l.server != nil {
		l.server.GracefulStop()
	}
	return nil
}
