// Package grpc exposes the standard gRPC health service with a status that follows MongoDB reachability.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name under which the feed service reports its own health.
const ServiceName = "feed.v1.FeedService"

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthServer publishes SERVING while the database answers pings and NOT_SERVING otherwise.
type HealthServer struct {
	srv     *health.Server
	db      Pinger
	timeout time.Duration
	logger  *slog.Logger
}

func NewHealthServer(db Pinger, timeout time.Duration, logger *slog.Logger) *HealthServer {
	srv := health.NewServer()
	srv.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		srv:     srv,
		db:      db,
		timeout: timeout,
		logger:  logger.With("component", "grpc-health"),
	}
}

// Register adds the health service to s.
func (h *HealthServer) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.srv)
}

// Probe pings the database once and publishes the result.
func (h *HealthServer) Probe(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := h.db.Ping(pingCtx, readpref.Primary()); err != nil {
		h.logger.WarnContext(ctx, "Database ping failed", slog.Any("error", err))
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
	return status
}

// Watch probes the database every interval until ctx is done, then marks everything NOT_SERVING
// and ignores later updates.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) error {
	h.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Stopping health watcher")
			h.srv.Shutdown()
			return nil
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
